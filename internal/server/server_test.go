package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/tasks"
	tu "github.com/desertthunder/taskcal/internal/testing"
)

type fakeSyncer struct {
	stats *models.RunStats
	err   error

	mu      sync.Mutex
	calls   int
	running int
	overlap bool
}

func (f *fakeSyncer) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.RunStats, error) {
	f.mu.Lock()
	f.calls++
	f.running++
	if f.running > 1 {
		f.overlap = true
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.running--
	f.mu.Unlock()
	return f.stats, f.err
}

type fakeChecker struct{ err error }

func (f fakeChecker) Ping(ctx context.Context) error { return f.err }

type fakeLister struct {
	records []*models.SyncRecord
	err     error
}

func (f fakeLister) List() ([]*models.SyncRecord, error) { return f.records, f.err }

type routesHandler struct {
	http.HandlerFunc
	routes []string
}

func (h routesHandler) Routes() []string { return h.routes }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestBasicRouter(t *testing.T) {
	ok := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, body) }
	}

	t.Run("dispatches by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc("get", "/items", ok("list"))
		router.HandleFunc(http.MethodPost, "/items", ok("create"))

		for method, want := range map[string]string{http.MethodGet: "list", http.MethodPost: "create"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(method, "/items", nil))
			if rec.Body.String() != want {
				t.Errorf("%s: expected %q, got %q", method, want, rec.Body.String())
			}
		}
	})

	t.Run("unregistered method", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodPost, "/items", ok("create"))
		router.HandleFunc(http.MethodGet, "/items", ok("list"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
			t.Errorf("expected Allow header 'GET, POST', got %q", allow)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected middleware order: %v", order)
		}
	})

	t.Run("custom handler routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(routesHandler{HandlerFunc: ok("multi"), routes: []string{"/a", "/b"}})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "multi" {
				t.Errorf("%s: expected handler to serve, got %q", path, rec.Body.String())
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("logging records status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

		out := buf.String()
		if !strings.Contains(out, "/brew") || !strings.Contains(out, "418") {
			t.Errorf("expected log line with path and status, got %q", out)
		}
	})

	t.Run("recover turns panic into 500", func(t *testing.T) {
		h := RecoverMiddleware(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestSyncHandler(t *testing.T) {
	fixed := time.Date(2023, 10, 10, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		syncer := &fakeSyncer{stats: &models.RunStats{TasksFound: 3, EventsCreated: 2, AlreadySynced: 1}}
		h := NewSyncHandler(syncer, quietLogger())
		h.now = func() time.Time { return fixed }

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp SyncResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Success || resp.Stats == nil || resp.Stats.EventsCreated != 2 {
			t.Errorf("unexpected response: %+v", resp)
		}
		if resp.Timestamp != "2023-10-10T12:00:00Z" {
			t.Errorf("unexpected timestamp %q", resp.Timestamp)
		}
	})

	t.Run("failure", func(t *testing.T) {
		h := NewSyncHandler(&fakeSyncer{err: errors.New("asana down")}, quietLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}

		var resp SyncResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Success || resp.Error != "asana down" || resp.Stats != nil {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("serializes runs", func(t *testing.T) {
		syncer := &fakeSyncer{stats: &models.RunStats{}}
		h := NewSyncHandler(syncer, quietLogger())

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sync", nil))
			}()
		}
		wg.Wait()

		if syncer.calls != 5 {
			t.Errorf("expected 5 runs, got %d", syncer.calls)
		}
		if syncer.overlap {
			t.Error("runs overlapped")
		}
	})
}

func TestStatusHandler(t *testing.T) {
	t.Run("CheckAll", func(t *testing.T) {
		status := CheckAll(context.Background(), map[string]Checker{
			"asana":  fakeChecker{},
			"google": fakeChecker{err: errors.New("unauthorized")},
			"none":   nil,
		})

		if !status["asana"] || status["google"] || status["none"] {
			t.Errorf("unexpected status: %v", status)
		}
		if len(status) != 3 {
			t.Errorf("expected 3 entries, got %d", len(status))
		}
	})

	t.Run("ServeHTTP", func(t *testing.T) {
		h := NewStatusHandler(map[string]Checker{"asana": fakeChecker{}, "google": fakeChecker{}})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		var status map[string]bool
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !status["asana"] || !status["google"] {
			t.Errorf("expected both checks to pass, got %v", status)
		}
	})
}

func TestRecordsHandler(t *testing.T) {
	t.Run("empty ledger encodes an empty list", func(t *testing.T) {
		h := NewRecordsHandler(fakeLister{}, quietLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		if !strings.Contains(rec.Body.String(), `"records":[]`) {
			t.Errorf("expected empty records array, got %s", rec.Body.String())
		}
	})

	t.Run("list error", func(t *testing.T) {
		h := NewRecordsHandler(fakeLister{err: errors.New("locked")}, quietLogger())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestAPIRouter(t *testing.T) {
	source := &tu.MockTaskSource{Tasks: []models.Task{{ID: "1", Name: "Ship it", DueOn: "2023-10-10"}}}
	sink := &tu.MockEventSink{}
	ledger := &tu.MemoryLedger{}

	engine, err := tasks.NewSyncEngine(tasks.SyncEngineOpts{
		Source: source,
		Sink:   sink,
		Ledger: ledger,
		Tag:    "schedule",
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	router := NewAPIRouter(APIOpts{
		Syncer:  engine,
		Records: ledger,
		Checks:  map[string]Checker{"asana": source, "google": sink},
		Logger:  quietLogger(),
	})

	t.Run("sync then list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from sync, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))

		var body struct {
			Count   int                  `json:"count"`
			Records []*models.SyncRecord `json:"records"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode records: %v", err)
		}
		if body.Count != 1 || body.Records[0].TaskID != "1" {
			t.Errorf("expected one record for task 1, got %+v", body)
		}
	})

	t.Run("sync requires POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sync", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	config := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenServer.URL},
		Scopes:       []string{"calendar"},
	}

	t.Run("AuthCodeURL", func(t *testing.T) {
		h := NewOAuthHandler(config, "state123")
		u := h.AuthCodeURL()
		for _, want := range []string{"state=state123", "access_type=offline", "prompt=consent"} {
			if !strings.Contains(u, want) {
				t.Errorf("expected %q in %s", want, u)
			}
		}
	})

	t.Run("exchanges code once", func(t *testing.T) {
		h := NewOAuthHandler(config, "state123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=abc", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "access" || result.Token.RefreshToken != "refresh" {
			t.Errorf("unexpected token: %+v", result.Token)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected second callback to be rejected, got %d", rec.Code)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		h := NewOAuthHandler(config, "state123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected state error")
		}
	})

	t.Run("denied consent", func(t *testing.T) {
		h := NewOAuthHandler(config, "state123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})
}

func TestServer(t *testing.T) {
	t.Run("serves until cancelled", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "pong") })
		srv := NewServer(ln.Addr().String(), handler, quietLogger())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln) }()

		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != "pong" {
			t.Errorf("expected pong, got %q", body)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("listen error", func(t *testing.T) {
		srv := NewServer("127.0.0.1:-1", http.NotFoundHandler(), quietLogger())
		if err := srv.ListenAndServe(context.Background()); err == nil {
			t.Error("expected listen error")
		}
	})
}
