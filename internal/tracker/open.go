package tracker

import (
	"fmt"

	"github.com/rs/zerolog"

	"courseprogress/internal/config"
	"courseprogress/internal/media"
	"courseprogress/internal/report"
	"courseprogress/internal/storage"
)

// Open assembles a Service from configuration: ffprobe, the duration cache,
// the scanner and the workbook builder. The on-disk cache is only opened
// when cache.path is set.
func Open(cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	ffprobe := media.NewFFprobe(cfg.Probe.FFprobePath, cfg.Probe.Timeout, logger)
	if ffprobe.IsAvailable() {
		logger.Debug().Msg("ffprobe available")
	} else {
		logger.Warn().Msg("ffprobe not found, every duration will be reported as 0")
	}

	var (
		store *storage.SQLiteStorage
		probe *media.CachedProbe
		err   error
	)
	if cfg.Cache.Path != "" {
		store, err = openStore(cfg.Cache.Path, logger)
		if err != nil {
			return nil, err
		}
		probe, err = media.NewCachedProbe(ffprobe, store, cfg.Cache.Capacity, logger)
	} else {
		probe, err = media.NewCachedProbe(ffprobe, nil, cfg.Cache.Capacity, logger)
	}
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("create duration cache: %w", err)
	}

	key := media.SectionByBase
	if cfg.Scan.SectionKey == config.SectionKeyPath {
		key = media.SectionByPath
	}

	scanner := media.NewScanner(probe, media.ScanOptions{
		Extensions: media.NewExtensionSet(cfg.Scan.Extensions),
		SectionKey: key,
		SkipHidden: cfg.Scan.SkipHidden,
	}, logger)

	svc := New(scanner, report.NewBuilder(cfg.Report.SheetName, logger), logger)
	if store != nil {
		svc.closers = append(svc.closers, store)
	}
	return svc, nil
}

func openStore(path string, logger zerolog.Logger) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("open duration cache: %w", err)
	}

	deleted, err := store.CleanupDeletedFiles()
	if err != nil {
		logger.Warn().Err(err).Msg("duration cache cleanup failed, continuing")
	} else if deleted > 0 {
		logger.Info().Int("removed", deleted).Msg("duration cache cleanup completed")
	}

	logger.Info().Str("path", path).Msg("duration cache opened")
	return store, nil
}
