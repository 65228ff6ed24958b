// Package web renders the HTML dashboard for the sync service.
//
// The dashboard lists every ledger record and offers a button that calls POST /api/sync,
// showing the returned run statistics without a page reload.
//
// Routes
//
//	GET  /  → Ledger table and sync button
//
// The JSON API itself lives in the server package; this package only adds the page on top of it.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/taskcal/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"date": func(r *models.SyncRecord) string {
		if r.AllDay {
			return r.DueDate.Format("2006-01-02")
		}
		return r.DueDate.Format("2006-01-02 15:04 MST")
	},
	"synced": func(t time.Time) string {
		return t.Local().Format("Jan 2 15:04")
	},
}

// RecordLister lists ledger records.
type RecordLister interface {
	List() ([]*models.SyncRecord, error)
}

// Dashboard serves the index page.
type Dashboard struct {
	records RecordLister
	tag     string
	tmpl    *template.Template
	logger  *log.Logger
}

type dashboardData struct {
	Tag     string
	Records []*models.SyncRecord
}

// NewDashboard parses the embedded templates.
func NewDashboard(records RecordLister, tag string, logger *log.Logger) (*Dashboard, error) {
	tmpl, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Dashboard{records: records, tag: tag, tmpl: tmpl, logger: logger}, nil
}

func (d *Dashboard) Routes() []string {
	return []string{"/{$}"}
}

func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := d.records.List()
	if err != nil {
		d.logger.Error("failed to list records", "error", err)
		http.Error(w, "Failed to load sync records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.tmpl.Execute(w, dashboardData{Tag: d.tag, Records: records}); err != nil {
		d.logger.Error("failed to render dashboard", "error", err)
	}
}
