package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"courseprogress/internal/api"
	"courseprogress/internal/config"
	"courseprogress/internal/server"
	"courseprogress/internal/tracker"
)

type options struct {
	configPath string
	logLevel   string
	pretty     bool

	output     string
	sectionKey string
	cachePath  string
	ffprobe    string
	timeout    time.Duration
	skipHidden bool

	host string
	port int

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:          "courseprogress [root]",
		Short:        "Build a course progress workbook from a folder of videos",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		Version:      api.Version,
		RunE:         o.runGenerate,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&o.pretty, "pretty", false, "Human readable log output")
	o.addGenerateFlags(root)

	generate := &cobra.Command{
		Use:   "generate [root]",
		Short: "Scan a course folder and write the progress workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE:  o.runGenerate,
	}
	o.addGenerateFlags(generate)

	serve := &cobra.Command{
		Use:   "serve [root]",
		Short: "Serve course summaries and workbooks over HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE:  o.runServe,
	}
	o.addGenerateFlags(serve)
	serve.Flags().StringVar(&o.host, "host", "", "Listen host")
	serve.Flags().IntVar(&o.port, "port", 0, "Listen port")

	root.AddCommand(generate, serve)
	return root
}

func (o *options) addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output workbook path (default course_progress.xlsx)")
	cmd.Flags().StringVar(&o.sectionKey, "section-key", "", "Section naming: base (default) or path")
	cmd.Flags().StringVar(&o.cachePath, "cache", "", "Path to the duration cache database")
	cmd.Flags().StringVar(&o.ffprobe, "ffprobe", "", "Path to the ffprobe binary")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Per file probe timeout")
	cmd.Flags().BoolVar(&o.skipHidden, "skip-hidden", false, "Skip hidden folders")
}

// loadConfig reads the config file and applies the flags the user set.
func (o *options) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Report.Output = o.output
	}
	if flags.Changed("section-key") {
		cfg.Scan.SectionKey = o.sectionKey
	}
	if flags.Changed("cache") {
		cfg.Cache.Path = o.cachePath
	}
	if flags.Changed("ffprobe") {
		cfg.Probe.FFprobePath = o.ffprobe
	}
	if flags.Changed("timeout") {
		cfg.Probe.Timeout = o.timeout
	}
	if flags.Changed("skip-hidden") {
		cfg.Scan.SkipHidden = o.skipHidden
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Logging.Pretty = o.pretty
	}
	if flags.Changed("host") {
		cfg.Server.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}

	if len(args) == 1 {
		cfg.Scan.Root = args[0]
	}
	if cfg.Scan.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		cfg.Scan.Root = wd
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := o.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, o.stderr)

	svc, err := tracker.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := svc.Generate(ctx, cfg.Scan.Root, cfg.Report.Output); err != nil {
		return err
	}

	fmt.Fprintf(o.stdout, "Excel file '%s' created successfully.\n", cfg.Report.Output)
	return nil
}

func (o *options) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := o.loadConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, o.stderr)

	logger.Info().
		Str("version", api.Version).
		Msg("starting course progress server")

	svc, err := tracker.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := server.New(cfg, logger, svc)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
			logger.Info().Msg("received shutdown signal")
		case <-ctx.Done():
			return
		}

		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
