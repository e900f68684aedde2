package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// SectionKey decides how a folder maps to a report section.
type SectionKey int

const (
	// SectionByBase keys a section by the folder base name only. Folders
	// sharing a name merge into one section.
	SectionByBase SectionKey = iota
	// SectionByPath keys a section by its slash-separated path relative to
	// the root, so same-named folders in different branches stay apart.
	SectionByPath
)

// Item is a single media file measured during a scan.
type Item struct {
	Section         string
	Name            string
	Path            string
	DurationMinutes float64
	Measured        bool
}

type ScanOptions struct {
	Extensions ExtensionSet
	SectionKey SectionKey
	SkipHidden bool
}

type Scanner struct {
	probe  DurationProbe
	opts   ScanOptions
	logger zerolog.Logger
}

func NewScanner(probe DurationProbe, opts ScanOptions, logger zerolog.Logger) *Scanner {
	if opts.Extensions.Len() == 0 {
		opts.Extensions = NewExtensionSet(DefaultExtensions)
	}
	return &Scanner{
		probe:  probe,
		opts:   opts,
		logger: logger,
	}
}

// Scan walks root depth-first and probes every media file below it. Files
// directly in root are not part of any section and are skipped. Any read
// error aborts the scan: a report with missing sections would understate the
// course totals.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	root = filepath.Clean(root)
	s.logger.Info().Str("path", root).Msg("scanning course")

	w := &walk{root: root}
	if err := s.scanDirectory(ctx, w, root); err != nil {
		return nil, err
	}

	if w.unmeasured > 0 {
		s.logger.Warn().Int("count", w.unmeasured).Msg("some durations could not be measured")
	}
	s.logger.Info().Int("items", len(w.items)).Msg("scan completed")

	return w.items, nil
}

type walk struct {
	root       string
	items      []Item
	unmeasured int
}

// scanDirectory emits the media files of dirPath before descending into its
// subfolders, so every folder's items stay adjacent.
func (s *Scanner) scanDirectory(ctx context.Context, w *walk, dirPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dirPath, err)
	}

	var subdirs []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			if s.opts.SkipHidden && strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			subdirs = append(subdirs, fullPath)
			continue
		}

		if dirPath == w.root || !s.opts.Extensions.IsSupportedVideo(entry.Name()) {
			continue
		}

		if err := s.addItem(ctx, w, dirPath, fullPath, entry.Name()); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := s.scanDirectory(ctx, w, sub); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) addItem(ctx context.Context, w *walk, dirPath, fullPath, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	section, err := s.sectionOf(w.root, dirPath)
	if err != nil {
		return err
	}

	result := s.probe.Probe(ctx, fullPath)
	if !result.Measured() {
		w.unmeasured++
		s.logger.Debug().Err(result.Err).Str("file", fullPath).Msg("duration unknown, counted as zero")
	}

	w.items = append(w.items, Item{
		Section:         section,
		Name:            name,
		Path:            fullPath,
		DurationMinutes: toMinutes(result.Seconds),
		Measured:        result.Measured(),
	})

	s.logger.Debug().
		Str("section", section).
		Str("item", name).
		Float64("seconds", result.Seconds).
		Msg("added item")
	return nil
}

func (s *Scanner) sectionOf(root, dir string) (string, error) {
	if s.opts.SectionKey != SectionByPath {
		return filepath.Base(dir), nil
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// toMinutes converts seconds to minutes rounded to two decimals.
func toMinutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}
