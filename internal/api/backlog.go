package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"support-intake-go/internal/aggregator"
	"support-intake-go/internal/dataset"
	"support-intake-go/internal/notify"
	"support-intake-go/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type statsResponse struct {
	aggregator.Insight
	Notifications *notify.Stats `json:"notifications,omitempty"`
}

func (s *server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	all, err := s.p.Schedules(r.Context())
	if err != nil {
		s.fail(w, r, "Error loading schedules", err)
		return
	}
	if all == nil {
		all = []types.Schedule{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *server) handleExportSchedules(w http.ResponseWriter, r *http.Request) {
	all, err := s.p.Schedules(r.Context())
	if err != nil {
		s.fail(w, r, "Error loading schedules", err)
		return
	}
	var buf bytes.Buffer
	if err := dataset.ExportSchedules(&buf, all); err != nil {
		s.fail(w, r, "Error exporting schedules", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="schedules.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	insight, err := s.p.Stats(r.Context())
	if err != nil {
		s.fail(w, r, "Error loading schedules", err)
		return
	}
	resp := statsResponse{Insight: insight}
	if s.queue != nil {
		st := s.queue.Stats()
		resp.Notifications = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status := r.FormValue("status")
	notes := r.FormValue("notes")

	if err := s.p.UpdateSchedule(r.Context(), id, status, notes); err != nil {
		s.fail(w, r, "Error updating schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Schedule updated successfully"})
}

func (s *server) handleListFAQ(w http.ResponseWriter, r *http.Request) {
	l, err := s.p.FAQs()
	if err != nil {
		s.fail(w, r, "Error loading FAQ", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *server) handleAddFAQ(w http.ResponseWriter, r *http.Request) {
	if err := s.p.AddFAQ(r.FormValue("question"), r.FormValue("answer")); err != nil {
		s.fail(w, r, "Error adding FAQ", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "FAQ added successfully"})
}

