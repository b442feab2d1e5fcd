package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"support-intake-go/internal/aggregator"
	"support-intake-go/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	index     *template.Template
	dashboard *template.Template
}

func mustParsePages() *pages {
	return &pages{
		index:     template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/index.html")),
		dashboard: template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/bpo_dashboard.html")),
	}
}

type dashboardData struct {
	Stats     aggregator.Insight
	Schedules []types.Schedule
	Statuses  []string
}

var dashboardStatuses = []string{types.StatusPending, "In Progress", "Completed", "Cancelled"}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.pages.index, nil)
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	all, err := s.p.Schedules(r.Context())
	if err != nil {
		s.fail(w, r, "Error loading schedules", err)
		return
	}
	s.render(w, r, s.pages.dashboard, dashboardData{
		Stats:     aggregator.Aggregate(all),
		Schedules: all,
		Statuses:  dashboardStatuses,
	})
}

func (s *server) render(w http.ResponseWriter, r *http.Request, t *template.Template, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.fail(w, r, "Error rendering page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
