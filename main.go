package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"loan-amortizer/config"
	"loan-amortizer/domain"
	"loan-amortizer/export"
	"loan-amortizer/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("amortizer failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "amortizer",
		Usage: "fixed-rate loan amortization schedules",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "path to config.yaml (defaults are used when empty)",
						EnvVars: []string{"AMORTIZER_CONFIG"},
					},
				},
				Action: func(c *cli.Context) error {
					return serve(c.Context, c.String("config"))
				},
			},
			{
				Name:  "schedule",
				Usage: "print a schedule without starting the server",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "loan-amount", Required: true},
					&cli.IntFlag{Name: "terms-in-months", Required: true},
					&cli.Float64Flag{Name: "annual-interest-rate", Required: true},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "json | csv | xlsx | pdf"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "write to file instead of stdout"},
				},
				Action: scheduleCommand,
			},
		},
	}
}

func scheduleCommand(c *cli.Context) (err error) {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	schedule, err := service.Amortize(domain.AmortizationRequest{
		LoanAmount:         float32(c.Float64("loan-amount")),
		TermsInMonths:      c.Int("terms-in-months"),
		AnnualInterestRate: float32(c.Float64("annual-interest-rate")),
	}, time.Now())
	if err != nil {
		return err
	}

	var out io.Writer = c.App.Writer
	if path := c.String("output"); path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("create %s: %w", path, cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
			}
		}()
		out = f
	}

	return export.Write(out, format, schedule)
}

// setupLogger installs the default slog logger described by cfg.
func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
