package report

import (
	"math"

	"courseprogress/internal/media"
)

// FirstItemRow is the sheet row of the first item; row 1 holds the header.
const FirstItemRow = 2

// consistencyTolerance bounds the drift between the course total and the sum
// of its parts.
const consistencyTolerance = 1e-6

type Row struct {
	Index int        `json:"row"`
	Item  media.Item `json:"-"`
}

type SectionSummary struct {
	Name         string  `json:"name"`
	Rows         []int   `json:"-"`
	FirstRow     int     `json:"first_row"`
	LastRow      int     `json:"last_row"`
	ItemCount    int     `json:"items"`
	Unmeasured   int     `json:"unmeasured"`
	TotalMinutes float64 `json:"total_minutes"`
}

// Model is the aggregated report: items in scan order with their sheet rows,
// and sections in first-seen order.
type Model struct {
	Rows         []Row            `json:"-"`
	Sections     []SectionSummary `json:"sections"`
	TotalMinutes float64          `json:"total_minutes"`
}

// Aggregate assigns sheet rows to items and groups them by section.
func Aggregate(items []media.Item) *Model {
	m := &Model{Rows: make([]Row, 0, len(items))}
	index := make(map[string]int)

	for i, item := range items {
		row := FirstItemRow + i
		m.Rows = append(m.Rows, Row{Index: row, Item: item})

		pos, ok := index[item.Section]
		if !ok {
			pos = len(m.Sections)
			index[item.Section] = pos
			m.Sections = append(m.Sections, SectionSummary{Name: item.Section, FirstRow: row})
		}

		s := &m.Sections[pos]
		s.Rows = append(s.Rows, row)
		s.LastRow = row
		s.ItemCount++
		s.TotalMinutes += item.DurationMinutes
		if !item.Measured {
			s.Unmeasured++
		}
	}

	for _, s := range m.Sections {
		m.TotalMinutes += s.TotalMinutes
	}

	return m
}

// MaxRow is the last item row, or the header row when there are no items.
func (m *Model) MaxRow() int {
	return FirstItemRow + len(m.Rows) - 1
}

// SummaryHeaderRow leaves two blank rows between the item table and the
// section summary.
func (m *Model) SummaryHeaderRow() int {
	return m.MaxRow() + 3
}

// TotalRow follows the last section summary row.
func (m *Model) TotalRow() int {
	return m.SummaryHeaderRow() + len(m.Sections) + 1
}

// ItemMinutes sums the item durations directly, bypassing the sections.
func (m *Model) ItemMinutes() float64 {
	total := 0.0
	for _, r := range m.Rows {
		total += r.Item.DurationMinutes
	}
	return total
}

// Consistent reports whether the course total matches both the sum of the
// section totals and the sum of the item durations.
func (m *Model) Consistent() bool {
	sections := 0.0
	for _, s := range m.Sections {
		sections += s.TotalMinutes
	}
	return math.Abs(sections-m.TotalMinutes) <= consistencyTolerance &&
		math.Abs(m.ItemMinutes()-m.TotalMinutes) <= consistencyTolerance
}

// Spans splits the section's rows into contiguous blocks. A section is a
// single block unless same-named folders interleave in base-name mode.
func (s SectionSummary) Spans() []Span {
	var spans []Span
	for _, row := range s.Rows {
		if n := len(spans); n > 0 && spans[n-1].Last == row-1 {
			spans[n-1].Last = row
			continue
		}
		spans = append(spans, Span{First: row, Last: row})
	}
	return spans
}
