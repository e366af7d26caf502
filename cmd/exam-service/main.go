package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seiyo-exam/internal/analytics"
	"seiyo-exam/internal/config"
	"seiyo-exam/internal/exam"
	"seiyo-exam/internal/exam/sqlite"
	"seiyo-exam/internal/httpapi"
	"seiyo-exam/internal/logger"
)

func main() {
	cfg, envLoaded := config.Load()

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	snapshotDir := flag.String("snapshots", cfg.SnapshotDir, "published snapshot directory")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer log.Sync()
	if !envLoaded {
		log.Debug("no .env file, using process environment")
	}

	store, err := sqlite.NewSQLiteStore(*dbPath)
	if err != nil {
		log.Error("open database failed", "db", *dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if run, err := store.LatestPublish(context.Background()); err == nil {
		log.Info("catalog loaded", "version", run.Version, "questions", run.QuestionCount)
	} else {
		log.Warn("catalog has no publish yet; run publish-snapshots with --db", "db", *dbPath)
	}
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN is empty, admin analytics disabled")
	}

	exams := exam.NewService(store, store)
	server := &http.Server{
		Addr: *addr,
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			SnapshotDir: *snapshotDir,
			AdminToken:  cfg.AdminToken,
			Exams:       exams,
			Analytics:   analytics.NewService(store),
			Log:         log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			exams.InvalidateAnswerKeys()
			log.Info("answer key cache cleared")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info("exam-service listening", "addr", *addr, "snapshots", *snapshotDir, "db", *dbPath)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
