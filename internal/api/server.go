// Package api exposes the intake pipeline, the schedule backlog and the FAQ
// over HTTP, together with the landing page and the BPO dashboard.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"support-intake-go/internal/logger"
	"support-intake-go/internal/notify"
	"support-intake-go/internal/processor"
)

const defaultMaxUpload = 32 << 20 // 32MB

// QueueStats reports notification delivery counters.
type QueueStats interface {
	Stats() notify.Stats
}

type Deps struct {
	Processor   *processor.Processor
	Log         *logger.Logger
	CORSOrigins []string
	// MaxUploadBytes caps multipart bodies; zero means 32MB.
	MaxUploadBytes int64
	// Queue is optional; when set /api/stats includes delivery counters.
	Queue QueueStats
}

type server struct {
	p         *processor.Processor
	log       *logger.Logger
	maxUpload int64
	queue     QueueStats
	pages     *pages
}

func NewHandler(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultMaxUpload
	}
	s := &server{
		p:         d.Processor,
		log:       d.Log.Component("api"),
		maxUpload: d.MaxUploadBytes,
		queue:     d.Queue,
		pages:     mustParsePages(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(d.Log.Middleware)
	r.Use(CORS(d.CORSOrigins))

	r.Get("/", s.handleIndex)
	r.Get("/bpo", s.handleDashboard)
	r.Get("/healthz", handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedules", s.handleListSchedules)
		r.Get("/schedules/export", s.handleExportSchedules)
		r.Get("/stats", s.handleStats)
		r.Get("/faq", s.handleListFAQ)
		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
		r.Post("/generate", s.handleGenerate)
		r.Post("/update-schedule/{id}", s.handleUpdateSchedule)
		r.Post("/add-faq", s.handleAddFAQ)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a processor error kind to a response code.
func statusFor(err error) int {
	switch processor.KindOf(err) {
	case processor.KindValidation:
		return http.StatusBadRequest
	case processor.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err using the kind mapping. Server-side failures get prefix
// prepended to the message and are logged.
func (s *server) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		writeError(w, status, err.Error())
		return
	}
	logger.FromContext(r.Context(), s.log).WithField("error", err.Error()).Error(prefix)
	writeError(w, status, prefix+": "+err.Error())
}
