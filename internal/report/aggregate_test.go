package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseprogress/internal/media"
)

func item(section, name string, minutes float64) media.Item {
	return media.Item{Section: section, Name: name, DurationMinutes: minutes, Measured: true}
}

func TestAggregate_GroupsInFirstSeenOrder(t *testing.T) {
	// Given
	items := []media.Item{
		item("Intro", "a.mp4", 2),
		item("Intro", "b.mp4", 3.5),
		item("Basics", "c.mp4", 1.25),
		item("Advanced", "d.mp4", 10),
	}

	// When
	m := Aggregate(items)

	// Then
	require.Len(t, m.Sections, 3)
	assert.Equal(t, "Intro", m.Sections[0].Name)
	assert.Equal(t, "Basics", m.Sections[1].Name)
	assert.Equal(t, "Advanced", m.Sections[2].Name)

	assert.Equal(t, []int{2, 3}, m.Sections[0].Rows)
	assert.Equal(t, 2, m.Sections[0].FirstRow)
	assert.Equal(t, 3, m.Sections[0].LastRow)
	assert.Equal(t, 5.5, m.Sections[0].TotalMinutes)
	assert.Equal(t, 2, m.Sections[0].ItemCount)
	assert.Equal(t, []int{4}, m.Sections[1].Rows)

	assert.Equal(t, 16.75, m.TotalMinutes)
	assert.Equal(t, 5, m.MaxRow())
	assert.Equal(t, 8, m.SummaryHeaderRow())
	assert.Equal(t, 12, m.TotalRow())
	assert.True(t, m.Consistent())
}

func TestAggregate_RowsFollowScanOrder(t *testing.T) {
	m := Aggregate([]media.Item{item("A", "1.mp4", 1), item("B", "2.mp4", 1)})

	require.Len(t, m.Rows, 2)
	assert.Equal(t, 2, m.Rows[0].Index)
	assert.Equal(t, "1.mp4", m.Rows[0].Item.Name)
	assert.Equal(t, 3, m.Rows[1].Index)
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil)

	assert.Empty(t, m.Rows)
	assert.Empty(t, m.Sections)
	assert.Zero(t, m.TotalMinutes)
	assert.Equal(t, 1, m.MaxRow())
	assert.Equal(t, 4, m.SummaryHeaderRow())
	assert.Equal(t, 5, m.TotalRow())
	assert.True(t, m.Consistent())
}

func TestAggregate_CountsUnmeasured(t *testing.T) {
	broken := item("Intro", "broken.mp4", 0)
	broken.Measured = false

	m := Aggregate([]media.Item{item("Intro", "a.mp4", 2), broken})

	require.Len(t, m.Sections, 1)
	assert.Equal(t, 1, m.Sections[0].Unmeasured)
	assert.Equal(t, 2.0, m.Sections[0].TotalMinutes)
}

func TestAggregate_TotalsStayConsistent(t *testing.T) {
	// Durations with inexact binary representations.
	var items []media.Item
	sections := []string{"A", "B", "C", "A", "D", "B"}
	for i := 0; i < 600; i++ {
		items = append(items, item(sections[i%len(sections)], "x.mp4", float64(i%97)*0.01+0.33))
	}

	m := Aggregate(items)

	assert.True(t, m.Consistent())
	assert.InDelta(t, m.ItemMinutes(), m.TotalMinutes, 1e-6)
}

func TestSectionSummary_Spans(t *testing.T) {
	testCases := []struct {
		rows []int
		want []Span
	}{
		{rows: []int{2}, want: []Span{{2, 2}}},
		{rows: []int{2, 3, 4}, want: []Span{{2, 4}}},
		{rows: []int{2, 3, 6, 7, 9}, want: []Span{{2, 3}, {6, 7}, {9, 9}}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, SectionSummary{Rows: tc.rows}.Spans())
	}
}

func TestAggregate_InterleavedSectionKeepsExactRows(t *testing.T) {
	m := Aggregate([]media.Item{
		item("Extras", "a.mp4", 1),
		item("Main", "b.mp4", 1),
		item("Extras", "c.mp4", 1),
	})

	require.Len(t, m.Sections, 2)
	assert.Equal(t, []Span{{2, 2}, {4, 4}}, m.Sections[0].Spans())
	assert.Equal(t, 2.0, m.Sections[0].TotalMinutes)
}
