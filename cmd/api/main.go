/* Copyright (c) 2025 initiative-health contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/chriscantu/initiative-health/internal/config"
    ihttp "github.com/chriscantu/initiative-health/internal/http"
    "github.com/chriscantu/initiative-health/internal/jobs"
    "github.com/chriscantu/initiative-health/internal/logger"
    "github.com/chriscantu/initiative-health/internal/repo"
    "github.com/chriscantu/initiative-health/internal/services"
    "github.com/chriscantu/initiative-health/internal/tracker"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB
    db := repo.MustOpen(ctx, cfg, log)
    defer db.Close()

    // Tracker client
    tc := tracker.NewClient(cfg, log)

    // Services
    repository := repo.NewRepository(db, log)
    svc := services.New(cfg, log, repository, tc)

    // Cron
    cr := jobs.NewCron(cfg, log, svc, repository)
    cr.Start()
    defer cr.Stop()

    // HTTP server (Gin)
    router := ihttp.NewRouter(cfg, log, svc)

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
