package logger

import (
    "os"
    "time"

    "github.com/chriscantu/initiative-health/internal/config"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

const serviceName = "initiative-health"

// New builds the base logger every component derives from. The service
// name and environment ride on every line so aggregated logs from the
// shared cluster stay attributable.
func New(cfg config.Config) zerolog.Logger {
    if cfg.AppEnv == "dev" {
        output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
        logger := zerolog.New(output).With().Timestamp().Str("svc", serviceName).Logger()
        log.Logger = logger
        return logger
    }
    zerolog.TimeFieldFormat = time.RFC3339
    logger := zerolog.New(os.Stdout).With().Timestamp().Str("svc", serviceName).Str("env", cfg.AppEnv).Logger()
    log.Logger = logger
    return logger
}
