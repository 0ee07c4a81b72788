// Command export aggregates the accident dataset into bar groups and
// publishes them to the export Kafka topic.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	kafkaadapter "github.com/couchcryptid/uk-accident-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/uk-accident-dashboard/internal/config"
	"github.com/couchcryptid/uk-accident-dashboard/internal/dataset"
	"github.com/couchcryptid/uk-accident-dashboard/internal/domain"
	"github.com/couchcryptid/uk-accident-dashboard/internal/observability"
)

// listFlag collects a flag given several times or as a comma-separated list.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func main() {
	var severities, days listFlag
	flag.Var(&severities, "severity", "severity to export (repeatable, comma-separated; default all)")
	flag.Var(&days, "day", "day of week to export (repeatable, comma-separated; default all)")
	flag.Parse()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	accidents, stats, err := dataset.LoadAccidents(cfg.AccidentsPath)
	if err != nil {
		logger.Error("failed to load accidents", "path", cfg.AccidentsPath, "error", err)
		os.Exit(1)
	}
	logger.Info("accidents loaded", "path", cfg.AccidentsPath, "rows", stats.Kept, "dropped", stats.Dropped)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sel := selection(accidents, severities, days)
	n, err := export(ctx, cfg, logger, accidents, sel)
	if err != nil {
		logger.Error("export failed", "error", err)
		stop()
		os.Exit(1)
	}

	logger.Info("export complete",
		"severities", len(sel.Severities),
		"days", len(sel.Days),
		"groups", n,
	)
}

// export aggregates the selected rows and publishes one message per bar group.
func export(ctx context.Context, cfg *config.Config, logger *slog.Logger, accidents *domain.AccidentTable, sel domain.Selection) (int, error) {
	groups := domain.AggregateForBar(accidents.Filter(sel))

	writer := kafkaadapter.NewWriter(cfg, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	if err := writer.PublishBarGroups(ctx, groups, time.Now().UTC()); err != nil {
		return 0, err
	}
	return len(groups), nil
}

// selection builds the export filter. An omitted flag selects every value
// present in the dataset.
func selection(t *domain.AccidentTable, severities, days []string) domain.Selection {
	sel := domain.Selection{Days: days}
	for _, s := range severities {
		sel.Severities = append(sel.Severities, domain.Severity(s))
	}
	if len(sel.Severities) == 0 {
		sel.Severities = t.Severities()
	}
	if len(sel.Days) == 0 {
		sel.Days = t.Days()
	}
	return sel.Normalize()
}
