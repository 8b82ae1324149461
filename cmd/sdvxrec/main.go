package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/sdvxrec/internal/adapters/http/api"
	"github.com/okian/sdvxrec/internal/adapters/repl"
	"github.com/okian/sdvxrec/internal/adapters/source"
	"github.com/okian/sdvxrec/internal/app"
	"github.com/okian/sdvxrec/internal/config"
	"github.com/okian/sdvxrec/pkg/logger"
	"github.com/okian/sdvxrec/pkg/metrics"
)

// HTTP listener timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(run).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sdvxrec:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

func newApp(action func(c *cli.Context, cfg *config.Config) error) *cli.App {
	return &cli.App{
		Name:  "sdvxrec",
		Usage: "query SOUND VOLTEX play records and compute volforce",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a YAML configuration file (default $SDVXREC_CONFIG)"},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "record backend: auto, local or remote"},
			&cli.StringFlag{Name: "refid", Usage: "player refid of the local save log"},
			&cli.StringFlag{Name: "username", Usage: "player username on the remote server"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics on this address"},
			&cli.StringFlag{Name: "http-addr", Usage: "serve the read-only JSON query API on this address"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return action(c, cfg)
		},
	}
}

// loadConfig layers command line flags over the file and environment.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(c.Context, c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("refid") {
		cfg.Local.Refid = c.String("refid")
	}
	if c.IsSet("username") {
		cfg.Remote.Username = c.String("username")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}
	if c.IsSet("http-addr") {
		cfg.HTTPAddr = c.String("http-addr")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, err := source.Open(ctx, cfg, log.Named("source"))
	if err != nil {
		return err
	}
	engine, err := app.Load(ctx, src, app.WithLogger(log.Named("engine")))
	if cerr := src.Close(); cerr != nil {
		log.Warn(ctx, "closing source failed", logger.Error(cerr))
	}
	if err != nil {
		return err
	}

	st := engine.Stats()
	log.Info(ctx, "records loaded",
		logger.String("source", st.Source),
		logger.Int("music", st.Music),
		logger.Int("records", st.Records),
		logger.Any("took", st.LoadDuration))

	for addr, mux := range routes(cfg, engine) {
		stopServer := serve(ctx, addr, mux, log.Named("http"))
		defer stopServer()
	}

	shell := repl.New(engine,
		repl.WithLogger(log.Named("repl")),
		repl.WithHistoryFile(cfg.HistoryFile))
	return shell.Run(ctx)
}

// routes groups the HTTP handlers by listen address. The query API and the
// metrics endpoint share a mux when they are configured on the same address.
func routes(cfg *config.Config, q api.Queries) map[string]*http.ServeMux {
	muxes := make(map[string]*http.ServeMux)
	mux := func(addr string) *http.ServeMux {
		if m, ok := muxes[addr]; ok {
			return m
		}
		m := http.NewServeMux()
		muxes[addr] = m
		return m
	}
	if cfg.MetricsAddr != "" {
		mux(cfg.MetricsAddr).Handle("GET /metrics", metrics.Handler())
	}
	if cfg.HTTPAddr != "" {
		mux(cfg.HTTPAddr).Handle("/", api.NewServer(q).Handler())
	}
	return muxes
}

// serve listens on addr until the returned func is called.
func serve(ctx context.Context, addr string, handler http.Handler, log logger.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.String("addr", addr), logger.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "HTTP shutdown failed", logger.String("addr", addr), logger.Error(err))
		}
	}
}
