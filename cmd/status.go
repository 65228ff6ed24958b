package main

import (
	"context"
	"time"

	"github.com/desertthunder/taskcal/internal/server"
	"github.com/urfave/cli/v3"
)

// statusChecks builds one checker per service; a service that cannot be built reports unreachable.
func (r *Runner) statusChecks(ctx context.Context) map[string]server.Checker {
	checks := map[string]server.Checker{"asana": nil, "google_calendar": nil}

	if source, err := r.taskSource(); err != nil {
		r.logger.Warn("asana unavailable", "error", err)
	} else if c, ok := source.(server.Checker); ok {
		checks["asana"] = c
	}

	if sink, err := r.eventSink(ctx); err != nil {
		r.logger.Warn("google calendar unavailable", "error", err)
	} else if c, ok := sink.(server.Checker); ok {
		checks["google_calendar"] = c
	}

	return checks
}

// Status probes Asana and Google Calendar and reports which ones answered.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	status := server.CheckAll(ctx, r.statusChecks(ctx))

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	for _, name := range []string{"asana", "google_calendar"} {
		if status[name] {
			r.writePlain("✓ %s\n", name)
		} else {
			r.writePlain("✗ %s\n", name)
		}
	}

	if ledger, err := r.ledgerStore(); err == nil {
		if records, err := ledger.List(); err == nil {
			r.writePlain("\nLedger: %d synced tasks (%s)\n", len(records), r.config.Database.Path)
		}
	}
	return nil
}
