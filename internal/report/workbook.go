package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"

	// excelize built-in number format "0.00%".
	percentFormat = 10

	completedColor  = "C6EFCE"
	incompleteColor = "FFC7CE"
)

var (
	itemHeader    = []string{"Section", "Subsection", "Duration (min)", "Watched (0/1)"}
	summaryHeader = []string{"Section", "Progress (%)", "Time Watched (min)", "Time Remaining (min)", "Total Time (min)", "Total Time (h:m)"}

	columnWidths = []struct {
		col   string
		width float64
	}{
		{ColSection, 25}, {ColName, 40}, {ColDuration, 15},
		{ColWatched, 12}, {ColTotal, 18}, {ColTotalText, 15},
	}

	thinBorder = []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
)

// Builder renders a Model into a single-sheet workbook.
type Builder struct {
	sheet  string
	logger zerolog.Logger
}

func NewBuilder(sheet string, logger zerolog.Logger) *Builder {
	if sheet == "" {
		sheet = "Course Progress"
	}
	return &Builder{sheet: sheet, logger: logger}
}

type styles struct {
	header, centered, bold        int
	summary, summaryPct           int
	total, totalPct               int
	completedFill, incompleteFill int
}

// Build returns the workbook for m. The caller must Close it.
func (b *Builder) Build(m *Model) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := b.build(f, m); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (b *Builder) build(f *excelize.File, m *Model) error {
	if err := f.SetSheetName(defaultSheet, b.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	w := &sheetWriter{f: f, sheet: b.sheet}
	b.writeItems(w, m, st)
	b.writeSummary(w, m, st)
	b.writeTotal(w, m, st)
	if w.err != nil {
		return w.err
	}

	if err := b.addValidation(f, m); err != nil {
		return fmt.Errorf("add watched validation: %w", err)
	}
	if err := b.addHighlighting(f, m, st); err != nil {
		return fmt.Errorf("add section highlighting: %w", err)
	}

	for _, c := range columnWidths {
		if err := f.SetColWidth(b.sheet, c.col, c.col, c.width); err != nil {
			return fmt.Errorf("set width of column %s: %w", c.col, err)
		}
	}
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&st.centered, &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&st.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&st.summary, &excelize.Style{Border: thinBorder}},
		{&st.summaryPct, &excelize.Style{Border: thinBorder, NumFmt: percentFormat}},
		{&st.total, &excelize.Style{Border: thinBorder, Font: &excelize.Font{Bold: true}}},
		{&st.totalPct, &excelize.Style{Border: thinBorder, Font: &excelize.Font{Bold: true}, NumFmt: percentFormat}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, err
		}
		*d.dst = id
	}

	var err error
	st.completedFill, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{completedColor}, Pattern: 1},
	})
	if err != nil {
		return st, err
	}
	st.incompleteFill, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{incompleteColor}, Pattern: 1},
	})
	return st, err
}

func (b *Builder) writeItems(w *sheetWriter, m *Model, st styles) {
	for i, title := range itemHeader {
		w.value(columnAt(i), 1, title)
	}
	w.style(Cell(ColSection, 1), Cell(ColWatched, 1), st.header)

	for _, r := range m.Rows {
		w.value(ColSection, r.Index, r.Item.Section)
		w.value(ColName, r.Index, r.Item.Name)
		w.value(ColDuration, r.Index, r.Item.DurationMinutes)
		w.value(ColWatched, r.Index, 0)
	}
	if len(m.Rows) > 0 {
		w.style(Cell(ColWatched, FirstItemRow), Cell(ColWatched, m.MaxRow()), st.centered)
	}
}

func (b *Builder) writeSummary(w *sheetWriter, m *Model, st styles) {
	head := m.SummaryHeaderRow()
	for i, title := range summaryHeader {
		w.value(columnAt(i), head, title)
	}
	w.style(Cell(ColSection, head), Cell(ColTotalText, head), st.bold)

	for i, s := range m.Sections {
		row := head + 1 + i
		w.value(ColSection, row, s.Name)
		w.formula(ColProgress, row, Progress(s.Spans()...))
		w.formula(ColTimeWatched, row, TimeWatched(s.Spans()...))
		w.formula(ColTimeRemaining, row, TimeRemaining(row))
		w.value(ColTotal, row, round2(s.TotalMinutes))
		w.value(ColTotalText, row, HoursMinutes(s.TotalMinutes))

		w.style(Cell(ColSection, row), Cell(ColTotalText, row), st.summary)
		w.style(Cell(ColProgress, row), Cell(ColProgress, row), st.summaryPct)
	}
}

func (b *Builder) writeTotal(w *sheetWriter, m *Model, st styles) {
	row := m.TotalRow()
	w.value(ColSection, row, "Total")
	if len(m.Rows) > 0 {
		all := Span{First: FirstItemRow, Last: m.MaxRow()}
		w.formula(ColProgress, row, Progress(all))
		w.formula(ColTimeWatched, row, TimeWatched(all))
	} else {
		// AVERAGE over an empty range is #DIV/0!; an empty course is 0% done.
		w.value(ColProgress, row, 0)
		w.value(ColTimeWatched, row, 0)
	}
	w.formula(ColTimeRemaining, row, TimeRemaining(row))
	w.value(ColTotal, row, round2(m.TotalMinutes))
	w.value(ColTotalText, row, HoursMinutes(m.TotalMinutes))

	w.style(Cell(ColSection, row), Cell(ColTotalText, row), st.total)
	w.style(Cell(ColProgress, row), Cell(ColProgress, row), st.totalPct)
}

func (b *Builder) addValidation(f *excelize.File, m *Model) error {
	if len(m.Rows) == 0 {
		return nil
	}
	dv := excelize.NewDataValidation(false)
	dv.Sqref = Range(ColWatched, FirstItemRow, m.MaxRow())
	if err := dv.SetDropList([]string{"0", "1"}); err != nil {
		return err
	}
	return f.AddDataValidation(b.sheet, dv)
}

// addHighlighting colours a section's item rows green once every item is
// watched and red otherwise. The two rules are complementary so exactly one
// matches.
func (b *Builder) addHighlighting(f *excelize.File, m *Model, st styles) error {
	for _, s := range m.Sections {
		spans := s.Spans()
		completed := Expression(CompletedRule(spans...))
		incomplete := Expression(IncompleteRule(spans...))
		for _, sp := range spans {
			ref := Cell(ColSection, sp.First) + ":" + Cell(ColWatched, sp.Last)
			err := f.SetConditionalFormat(b.sheet, ref, []excelize.ConditionalFormatOptions{
				{Type: "formula", Criteria: completed, Format: st.completedFill},
				{Type: "formula", Criteria: incomplete, Format: st.incompleteFill},
			})
			if err != nil {
				return fmt.Errorf("section %q: %w", s.Name, err)
			}
		}
	}
	return nil
}

// Write streams the workbook for m to w.
func (b *Builder) Write(m *Model, w io.Writer) error {
	f, err := b.Build(m)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}

// Save writes the workbook for m to path, replacing any existing file. The
// workbook goes to a temporary file first so a failed run never leaves a
// half-written report behind.
func (b *Builder) Save(m *Model, path string) error {
	f, err := b.Build(m)
	if err != nil {
		return err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	size, err := f.WriteTo(tmp)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	committed = true

	b.logger.Info().
		Str("path", path).
		Str("size", humanize.Bytes(uint64(size))).
		Int("items", len(m.Rows)).
		Int("sections", len(m.Sections)).
		Msg("report saved")
	return nil
}

// sheetWriter keeps the first error so cell writes can be issued in a row.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) value(col string, row int, v interface{}) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(w.sheet, Cell(col, row), v); err != nil {
		w.err = fmt.Errorf("write %s: %w", Cell(col, row), err)
	}
}

func (w *sheetWriter) formula(col string, row int, formula string) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellFormula(w.sheet, Cell(col, row), Expression(formula)); err != nil {
		w.err = fmt.Errorf("write formula %s: %w", Cell(col, row), err)
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellStyle(w.sheet, from, to, id); err != nil {
		w.err = fmt.Errorf("style %s:%s: %w", from, to, err)
	}
}

func columnAt(i int) string {
	return string(rune('A' + i))
}
