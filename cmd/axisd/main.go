package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"axis/internal/config"
	"axis/internal/feed"
	"axis/internal/ics"
	appLog "axis/internal/log"
	"axis/internal/store"
	"axis/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	importFile string
	once       bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("axisd starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// One-shot file import: parse, print, exit. No server, no store.
	if flags.importFile != "" {
		if err := importFile(conf, flags.importFile); err != nil {
			appLog.Error("file import failed", err, "path", flags.importFile)
			os.Exit(1)
		}
		return
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"data_dir", conf.DataDir,
		"feed_configured", conf.Feed != nil,
	)

	st := store.New(conf.DataDir)
	fetcher := feed.NewFetcher(filepath.Join(conf.DataDir, "feed-cache"))
	srv := web.NewServer(conf, st, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if _, err := srv.Refresh(ctx); err != nil {
			appLog.Error("refresh failed", err)
			os.Exit(1)
		}
		return
	}

	// Scheduled refresh, only when a feed is subscribed.
	var sched *cron.Cron
	if conf.Feed != nil && conf.RefreshCron != "" {
		sched = cron.New()
		_, err := sched.AddFunc(conf.RefreshCron, func() {
			rctx, rcancel := context.WithTimeout(ctx, time.Minute)
			defer rcancel()
			if _, err := srv.Refresh(rctx); err != nil {
				appLog.Error("scheduled refresh failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()
	}

	httpSrv := &http.Server{
		Addr:    conf.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}
	appLog.Info("axisd exiting")
}

// importFile imports a local feed file and prints the result as JSON.
func importFile(conf *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result := ics.ImportFeed(string(data), ics.Options{
		DisplayLocation: conf.Location(),
		MaxInputBytes:   conf.MaxInputBytes,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/axisd/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.importFile, "import", "", "Import a local .ics file, print the result as JSON and exit")
	flag.BoolVar(&cfg.once, "once", false, "Run one feed refresh and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
