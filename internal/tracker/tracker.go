package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"courseprogress/internal/media"
	"courseprogress/internal/report"
)

var ErrScanInProgress = errors.New("scan already in progress")

type Scanner interface {
	Scan(ctx context.Context, root string) ([]media.Item, error)
}

// Service runs the scan, aggregate and build pipeline. Only one run may be
// active at a time.
type Service struct {
	scanner Scanner
	builder *report.Builder
	logger  zerolog.Logger
	closers []io.Closer

	running bool
	mu      sync.Mutex
}

func New(scanner Scanner, builder *report.Builder, logger zerolog.Logger) *Service {
	return &Service{
		scanner: scanner,
		builder: builder,
		logger:  logger,
	}
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Summarize scans root and returns the aggregated model without rendering it.
func (s *Service) Summarize(ctx context.Context, root string) (*report.Model, error) {
	var model *report.Model
	err := s.run(func() error {
		var err error
		model, err = s.summarize(ctx, root)
		return err
	})
	return model, err
}

// Generate scans root and saves the workbook to output.
func (s *Service) Generate(ctx context.Context, root, output string) (*report.Model, error) {
	var model *report.Model
	err := s.run(func() error {
		var err error
		model, err = s.summarize(ctx, root)
		if err != nil {
			return err
		}
		if err := s.builder.Save(model, output); err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		return nil
	})
	return model, err
}

// WriteWorkbook scans root and streams the workbook to w.
func (s *Service) WriteWorkbook(ctx context.Context, root string, w io.Writer) (*report.Model, error) {
	var model *report.Model
	err := s.run(func() error {
		var err error
		model, err = s.summarize(ctx, root)
		if err != nil {
			return err
		}
		if err := s.builder.Write(model, w); err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		return nil
	})
	return model, err
}

// Close releases the resources opened by Open.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) run(fn func() error) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrScanInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return fn()
}

func (s *Service) summarize(ctx context.Context, root string) (*report.Model, error) {
	start := time.Now()

	items, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	model := report.Aggregate(items)
	if !model.Consistent() {
		return nil, fmt.Errorf("inconsistent totals: course %.6f, items %.6f", model.TotalMinutes, model.ItemMinutes())
	}

	s.logger.Info().
		Str("path", root).
		Int("items", len(model.Rows)).
		Int("sections", len(model.Sections)).
		Str("total", report.HoursMinutes(model.TotalMinutes)).
		Dur("took", time.Since(start)).
		Msg("course summarized")

	return model, nil
}
