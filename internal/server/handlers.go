package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/tasks"
)

// Syncer runs one synchronization pass.
type Syncer interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.RunStats, error)
}

// Checker reports whether a collaborator is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// RecordLister lists ledger records.
type RecordLister interface {
	List() ([]*models.SyncRecord, error)
}

// SyncResponse is the body of POST /api/sync.
type SyncResponse struct {
	Success   bool             `json:"success"`
	Stats     *models.RunStats `json:"stats,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// SyncHandler triggers a sync run per request.
//
// Requests are serialized so runs within one process never overlap.
type SyncHandler struct {
	syncer Syncer
	logger *log.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewSyncHandler creates a handler that runs syncer on POST.
func NewSyncHandler(syncer Syncer, logger *log.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, logger: logger, now: time.Now}
}

func (h *SyncHandler) Routes() []string {
	return []string{"/api/sync"}
}

func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	stats, err := h.syncer.Run(r.Context(), nil)
	h.mu.Unlock()

	ts := h.now().UTC().Format(time.RFC3339)
	if err != nil {
		h.logger.Error("sync failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, SyncResponse{Success: false, Error: err.Error(), Timestamp: ts})
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{Success: true, Stats: stats, Timestamp: ts})
}

// StatusHandler probes each named collaborator.
type StatusHandler struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewStatusHandler creates a handler reporting one boolean per check name.
//
// A nil Checker reports false.
func NewStatusHandler(checks map[string]Checker) *StatusHandler {
	return &StatusHandler{checks: checks, timeout: 10 * time.Second}
}

func (h *StatusHandler) Routes() []string {
	return []string{"/api/status"}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	writeJSON(w, http.StatusOK, CheckAll(ctx, h.checks))
}

// CheckAll pings every checker concurrently and reports which ones answered.
func CheckAll(ctx context.Context, checks map[string]Checker) map[string]bool {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		status = make(map[string]bool, len(checks))
	)

	for name, c := range checks {
		if c == nil {
			status[name] = false
			continue
		}
		wg.Add(1)
		go func(name string, c Checker) {
			defer wg.Done()
			ok := c.Ping(ctx) == nil
			mu.Lock()
			status[name] = ok
			mu.Unlock()
		}(name, c)
	}
	wg.Wait()

	return status
}

// RecordsHandler lists the sync ledger.
type RecordsHandler struct {
	records RecordLister
	logger  *log.Logger
}

func NewRecordsHandler(records RecordLister, logger *log.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

func (h *RecordsHandler) Routes() []string {
	return []string{"/api/records"}
}

func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List()
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*models.SyncRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "records": records})
}

// APIOpts contains the dependencies of the HTTP API.
type APIOpts struct {
	Syncer  Syncer
	Records RecordLister
	Checks  map[string]Checker
	Logger  *log.Logger
}

// NewAPIRouter registers the sync API routes on a new [BasicRouter] with logging and recovery middleware.
func NewAPIRouter(opts APIOpts) *BasicRouter {
	router := NewBasicRouter()
	router.Use(RecoverMiddleware(opts.Logger), LoggingMiddleware(opts.Logger))

	router.Handle(http.MethodPost, "/api/sync", NewSyncHandler(opts.Syncer, opts.Logger))
	router.Handle(http.MethodGet, "/api/status", NewStatusHandler(opts.Checks))
	router.Handle(http.MethodGet, "/api/records", NewRecordsHandler(opts.Records, opts.Logger))

	return router
}
