package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"
)

// logConfig holds the logging settings read from the environment.
type logConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"text" env-description:"Log output format (text or json)"`
	Level  string `env:"LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
}

func loadLogConfig() (logConfig, error) {
	var conf logConfig
	if err := cleanenv.ReadEnv(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

// createLogger creates a slog logger backed by zerolog. Logs go to stderr so
// that converted Markdown can be piped from stdout.
func createLogger(conf logConfig) *slog.Logger {
	var level slog.Level
	switch conf.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zerologLogger zerolog.Logger
	if conf.Format == "json" {
		zerologLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zerologLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	handler := slogzerolog.Option{
		Level:  level,
		Logger: &zerologLogger,
	}.NewZerologHandler()

	l := slog.New(handler)

	log.SetFlags(0)
	slog.SetDefault(l)

	return l
}
