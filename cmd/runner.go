package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/repositories"
	"github.com/desertthunder/taskcal/internal/services"
	"github.com/desertthunder/taskcal/internal/shared"
	"github.com/desertthunder/taskcal/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators not supplied through [RunnerOpts] are built from the config on first use.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	db          *sql.DB
	ledger      models.Ledger
	source      services.TaskSource
	sink        services.EventSink
	asana       *services.AsanaService
	engine      *tasks.SyncEngine
	openBrowser func(string) error
	authTimeout time.Duration
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Ledger models.Ledger
	Source services.TaskSource
	Sink   services.EventSink
	Asana  *services.AsanaService
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:      opts.Config,
		logger:      opts.Logger,
		output:      opts.Output,
		ledger:      opts.Ledger,
		source:      opts.Source,
		sink:        opts.Sink,
		asana:       opts.Asana,
		openBrowser: shared.OpenBrowser,
		authTimeout: 2 * time.Minute,
	}
	if r.source == nil && r.asana != nil {
		r.source = r.asana
	}
	return r
}

// loadConfig reads path when it exists, falling back to defaults, then applies environment overrides and validates.
func loadConfig(path string, lookup func(string) (string, bool)) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, recordsCommand, statusCommand, serveCommand, asanaCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and any engine it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
}

// Close releases the ledger database if the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// ledgerStore opens the SQLite ledger on first use.
func (r *Runner) ledgerStore() (models.Ledger, error) {
	if r.ledger != nil {
		return r.ledger, nil
	}

	db, err := shared.OpenLedgerDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLedger, err)
	}
	r.db = db
	r.ledger = repositories.NewSyncRecordRepository(db)
	return r.ledger, nil
}

// asanaService builds the Asana client from the config on first use.
func (r *Runner) asanaService() (*services.AsanaService, error) {
	if r.asana != nil {
		return r.asana, nil
	}

	svc, err := services.NewAsanaService(services.AsanaOpts{
		Token:             r.config.Asana.AccessToken,
		WorkspaceID:       r.config.Asana.WorkspaceID,
		BaseURL:           r.config.Asana.BaseURL,
		RequestsPerSecond: r.config.Asana.RequestsPerSecond,
	})
	if err != nil {
		return nil, err
	}
	r.asana = svc
	return svc, nil
}

func (r *Runner) taskSource() (services.TaskSource, error) {
	if r.source != nil {
		return r.source, nil
	}

	svc, err := r.asanaService()
	if err != nil {
		return nil, err
	}
	r.source = svc
	return svc, nil
}

// eventSink builds the Google Calendar client from the cached OAuth token on first use.
func (r *Runner) eventSink(ctx context.Context) (services.EventSink, error) {
	if r.sink != nil {
		return r.sink, nil
	}

	oauthConfig, err := services.LoadOAuthConfig(r.config.Google.CredentialsFile, r.config.Google.RedirectURI)
	if err != nil {
		return nil, err
	}

	client, err := services.NewGoogleClient(ctx, oauthConfig, r.config.Google.TokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := services.NewGoogleCalendarServiceFromClient(ctx, client, r.config.Google.CalendarID)
	if err != nil {
		return nil, err
	}
	r.sink = svc
	return svc, nil
}

// syncEngine wires the ledger, Asana and Google Calendar into a [tasks.SyncEngine].
//
// An empty tag uses the configured one.
func (r *Runner) syncEngine(ctx context.Context, tag string) (*tasks.SyncEngine, error) {
	if tag == "" && r.engine != nil {
		return r.engine, nil
	}

	ledger, err := r.ledgerStore()
	if err != nil {
		return nil, err
	}
	source, err := r.taskSource()
	if err != nil {
		return nil, err
	}
	sink, err := r.eventSink(ctx)
	if err != nil {
		return nil, err
	}

	useDefault := tag == ""
	if useDefault {
		tag = r.config.Sync.Tag
	}

	engine, err := tasks.NewSyncEngine(tasks.SyncEngineOpts{
		Source:            source,
		Sink:              sink,
		Ledger:            ledger,
		Tag:               tag,
		DescriptionFormat: r.config.Sync.DescriptionTemplate,
		CallTimeout:       time.Duration(r.config.Sync.CallTimeoutSeconds) * time.Second,
		Logger:            r.logger,
	})
	if err != nil {
		return nil, err
	}

	if useDefault {
		r.engine = engine
	}
	return engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
