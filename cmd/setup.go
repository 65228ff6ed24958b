package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the ledger database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenLedgerDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	applied, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	for _, m := range applied {
		r.writePlain("  migration %04d applied %s\n", m.Version, m.AppliedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// SetupConfig writes the example configuration to the given path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set asana.access_token and asana.workspace_id (or ASANA_ACCESS_TOKEN / ASANA_WORKSPACE_ID)\n")
	r.writePlain("2. Download OAuth client credentials to %s\n", r.config.Google.CredentialsFile)
	r.writePlain("3. Run 'taskcal auth google' to authorize calendar access\n")
	return nil
}
