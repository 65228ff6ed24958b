// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the ledger database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "google",
				Usage:  "Authorize Google Calendar access using OAuth2",
				Action: r.AuthGoogle,
			},
		},
	}
}

// syncCommand runs the Asana → Google Calendar synchronization
func syncCommand(r *Runner) *cli.Command {
	tagFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Asana tag to sync (default: sync.tag from config)",
		}
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Mirror tagged Asana tasks into Google Calendar",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one synchronization pass",
				Flags: []cli.Flag{
					tagFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output run stats as JSON",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "watch",
				Usage: "Run a pass now and then on an interval until interrupted",
				Flags: []cli.Flag{
					tagFlag(),
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Time between runs (default: sync.interval_minutes from config)",
					},
				},
				Action: r.SyncWatch,
			},
		},
	}
}

// recordsCommand inspects and edits the sync ledger
func recordsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "records",
		Aliases: []string{"ledger"},
		Usage:   "Inspect the sync ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List synced tasks and their events",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.RecordsList,
			},
			{
				Name:  "delete",
				Usage: "Forget a task so the next run creates its event again",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "task-id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "with-event",
						Usage: "Also delete the calendar event",
					},
				},
				Action: r.RecordsDelete,
			},
			{
				Name:  "export",
				Usage: "Export the ledger to CSV, Markdown, text or JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, - for stdout (default: sync_records.<ext>)",
					},
				},
				Action: r.RecordsExport,
			},
			{
				Name:  "verify",
				Usage: "Check that every recorded event still exists on the calendar",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Calendar requests per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecordsVerify,
			},
		},
	}
}

// statusCommand probes both services
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check connectivity to Asana and Google Calendar",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// serveCommand runs the HTTP API and dashboard
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the sync API and web dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Listen address (default: server.host:server.port from config)",
			},
		},
		Action: r.Serve,
	}
}

// asanaCommand handles Asana workspace operations
func asanaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "asana",
		Usage: "Asana workspace operations",
		Commands: []*cli.Command{
			{
				Name:  "tags",
				Usage: "List workspace tags",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AsanaTags,
			},
			{
				Name:  "tag",
				Usage: "Add the sync tag to a task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "task-id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "tag",
						Aliases: []string{"t"},
						Usage:   "Tag name (default: sync.tag from config)",
					},
				},
				Action: r.AsanaTag,
			},
			{
				Name:   "whoami",
				Usage:  "Show the user the access token belongs to",
				Action: r.AsanaWhoami,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the ledger dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive ledger dashboard",
		Action:  r.TUI,
	}
}
