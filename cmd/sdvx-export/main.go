package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/okian/sdvxrec/internal/adapters/export"
	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/app"
	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/internal/domain/model"
	"github.com/okian/sdvxrec/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sdvx-export:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sdvx-export",
		Usage: "copy remote play records into a local save log",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML configuration file (default $SDVXREC_CONFIG)"},
			&cli.StringFlag{Name: "username", Usage: "player username on the remote server"},
			&cli.StringFlag{Name: "refid", Usage: "refid stamped on the exported documents (default local.refid)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default local.record_path)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: run,
	}
}

// settings is what one export run needs once flags are applied.
type settings struct {
	cfg   *config.Config
	refid string
	out   string
}

func loadSettings(c *cli.Context) (settings, error) {
	cfg, err := config.LoadUnvalidated(c.Context, c.String("config"))
	if err != nil {
		return settings{}, err
	}
	cfg.Source = config.SourceRemote
	if c.IsSet("username") {
		cfg.Remote.Username = c.String("username")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	s := settings{cfg: cfg, refid: cfg.Local.Refid, out: cfg.Local.RecordPath}
	if c.IsSet("refid") {
		s.refid = c.String("refid")
	}
	if c.IsSet("out") {
		s.out = c.String("out")
	}
	if s.refid == "" {
		return settings{}, export.ErrNoRefid
	}
	return s, nil
}

func run(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	log := logger.Get()
	if err := logger.SetLevelString(s.cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", s.cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, err := source.Open(ctx, s.cfg, log.Named("source"))
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	engine, err := app.Load(ctx, src, app.WithLogger(log.Named("engine")), app.WithMetrics(false))
	if err != nil {
		return err
	}
	return write(ctx, s, engine.Records(), log)
}

func write(ctx context.Context, s settings, records []model.CanonicalRecord, log logger.Logger) error {
	x, err := export.New(s.refid, export.WithLogger(log.Named("export")))
	if err != nil {
		return err
	}
	res, err := x.WriteFile(ctx, s.out, records)
	if err != nil {
		return err
	}
	log.Info(ctx, "records exported",
		logger.String("path", s.out),
		logger.Int("written", res.Written),
		logger.Int("skipped", res.Skipped))
	return nil
}
