package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormulas(t *testing.T) {
	assert.Equal(t, "D7", Cell(ColWatched, 7))
	assert.Equal(t, "$D$7", AbsCell(ColWatched, 7))
	assert.Equal(t, "C2:C10", Range(ColDuration, 2, 10))
	assert.Equal(t, "$D$2:$D$10", AbsRange(ColWatched, 2, 10))

	assert.Equal(t, "=AVERAGE(D2:D10)", Progress(Span{2, 10}))
	assert.Equal(t, "=SUMPRODUCT(C2:C10,D2:D10)", TimeWatched(Span{2, 10}))
	assert.Equal(t, "=E14-C14", TimeRemaining(14))
	assert.Equal(t, "=AVERAGE($D$2:$D$10)=1", CompletedRule(Span{2, 10}))
	assert.Equal(t, "=AVERAGE($D$2:$D$10)<1", IncompleteRule(Span{2, 10}))
}

func TestFormulas_DisjointSpans(t *testing.T) {
	spans := []Span{{2, 3}, {6, 6}}

	assert.Equal(t, "=AVERAGE(D2:D3,D6:D6)", Progress(spans...))
	assert.Equal(t, "=SUMPRODUCT(C2:C3,D2:D3)+SUMPRODUCT(C6:C6,D6:D6)", TimeWatched(spans...))
	assert.Equal(t, "=AVERAGE($D$2:$D$3,$D$6:$D$6)=1", CompletedRule(spans...))
}

func TestExpression(t *testing.T) {
	assert.Equal(t, "AVERAGE(D2:D3)", Expression("=AVERAGE(D2:D3)"))
	assert.Equal(t, "E5-C5", Expression("E5-C5"))
}

func TestHoursMinutes(t *testing.T) {
	testCases := []struct {
		minutes float64
		want    string
	}{
		{0, "0h 0m"},
		{2, "0h 2m"},
		{59.99, "0h 59m"},
		{60, "1h 0m"},
		{125.5, "2h 5m"},
		{1440.25, "24h 0m"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, HoursMinutes(tc.minutes), "minutes %v", tc.minutes)
	}
}
