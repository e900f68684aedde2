package report

import (
	"fmt"
	"math"
	"strings"
)

// Sheet columns.
const (
	ColSection   = "A"
	ColName      = "B"
	ColDuration  = "C"
	ColWatched   = "D"
	ColTotal     = "E"
	ColTotalText = "F"
)

// Summary columns reuse the sheet letters with a different meaning.
const (
	ColProgress      = "B"
	ColTimeWatched   = "C"
	ColTimeRemaining = "D"
)

// Span is an inclusive block of item rows.
type Span struct {
	First, Last int
}

func Cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func AbsCell(col string, row int) string {
	return fmt.Sprintf("$%s$%d", col, row)
}

func Range(col string, first, last int) string {
	return Cell(col, first) + ":" + Cell(col, last)
}

func AbsRange(col string, first, last int) string {
	return AbsCell(col, first) + ":" + AbsCell(col, last)
}

// Progress is the share of watched items, e.g. =AVERAGE(D2:D10).
func Progress(spans ...Span) string {
	return "=" + average(Range, spans)
}

// TimeWatched sums the durations of watched items, e.g.
// =SUMPRODUCT(C2:C10,D2:D10). Disjoint spans add one SUMPRODUCT each.
func TimeWatched(spans ...Span) string {
	terms := make([]string, 0, len(spans))
	for _, sp := range spans {
		terms = append(terms, fmt.Sprintf("SUMPRODUCT(%s,%s)",
			Range(ColDuration, sp.First, sp.Last),
			Range(ColWatched, sp.First, sp.Last)))
	}
	return "=" + strings.Join(terms, "+")
}

// TimeRemaining subtracts the watched time from the total on a summary row.
func TimeRemaining(row int) string {
	return fmt.Sprintf("=%s-%s", Cell(ColTotal, row), Cell(ColTimeWatched, row))
}

// CompletedRule holds when every item in spans is watched.
func CompletedRule(spans ...Span) string {
	return "=" + average(AbsRange, spans) + "=1"
}

// IncompleteRule is the exact complement of CompletedRule.
func IncompleteRule(spans ...Span) string {
	return "=" + average(AbsRange, spans) + "<1"
}

func average(ref func(col string, first, last int) string, spans []Span) string {
	refs := make([]string, 0, len(spans))
	for _, sp := range spans {
		refs = append(refs, ref(ColWatched, sp.First, sp.Last))
	}
	return "AVERAGE(" + strings.Join(refs, ",") + ")"
}

// Expression strips the leading "=" that the sheet stores implicitly.
func Expression(formula string) string {
	return strings.TrimPrefix(formula, "=")
}

// HoursMinutes renders minutes as "Hh Mm", truncating leftover seconds.
func HoursMinutes(minutes float64) string {
	hours := int(math.Floor(minutes / 60))
	mins := int(math.Mod(minutes, 60))
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
