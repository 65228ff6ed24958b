package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/taskcal/internal/server"
	"github.com/desertthunder/taskcal/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the sync API and web dashboard until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, err := r.apiHandler(ctx)
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	r.writePlain("→ Serving on http://%s\n", addr)
	return server.NewServer(addr, handler, r.logger).ListenAndServe(ctx)
}

// apiHandler wires the sync API and the dashboard onto one router.
func (r *Runner) apiHandler(ctx context.Context) (*server.BasicRouter, error) {
	engine, err := r.syncEngine(ctx, "")
	if err != nil {
		return nil, err
	}
	ledger, err := r.ledgerStore()
	if err != nil {
		return nil, err
	}

	router := server.NewAPIRouter(server.APIOpts{
		Syncer:  engine,
		Records: ledger,
		Checks:  r.statusChecks(ctx),
		Logger:  r.logger,
	})

	dashboard, err := web.NewDashboard(ledger, engine.Tag(), r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	router.Handler(dashboard)

	return router, nil
}
