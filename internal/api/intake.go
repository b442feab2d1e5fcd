package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"support-intake-go/internal/processor"
	"support-intake-go/internal/transcription"
	"support-intake-go/internal/types"
)

// Apology is returned by /api/generate whenever the pipeline fails.
const Apology = "I'm sorry, I couldn't process your request at the moment. Please try again later."

type uploadResponse struct {
	Transcription string          `json:"transcription"`
	Sentiment     types.Sentiment `json:"sentiment"`
	IsFAQ         bool            `json:"is_faq"`
	Response      string          `json:"response"`
	Schedule      *types.Schedule `json:"schedule,omitempty"`
}

type chatResponse struct {
	Message   string          `json:"message"`
	Sentiment types.Sentiment `json:"sentiment"`
	IsFAQ     bool            `json:"is_faq"`
	Response  string          `json:"response"`
	Schedule  *types.Schedule `json:"schedule,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	defer r.Body.Close()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, processor.MsgNoFile)
		return
	}
	defer file.Close()
	if hdr.Filename == "" {
		writeError(w, http.StatusBadRequest, processor.MsgNoFile)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error reading uploaded file: "+err.Error())
		return
	}

	res, err := s.p.ProcessAudio(r.Context(), transcription.Audio{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		s.fail(w, r, "Error processing audio file", err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Transcription: res.Transcription,
		Sentiment:     res.Sentiment,
		IsFAQ:         res.IsFAQ,
		Response:      res.Response,
		Schedule:      res.Schedule,
	})
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	defer r.Body.Close()

	message := r.FormValue("message")
	skip := strings.EqualFold(r.FormValue("skip_schedule"), "true")

	res, err := s.p.ProcessText(r.Context(), message, skip)
	if err != nil {
		s.fail(w, r, "Error processing message", err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:   res.Message,
		Sentiment: res.Sentiment,
		IsFAQ:     res.IsFAQ,
		Response:  res.Response,
		Schedule:  res.Schedule,
	})
}

// handleGenerate answers a JSON prompt with the reply text only. It never
// schedules a callback.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	defer r.Body.Close()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "No prompt provided")
		return
	}

	res, err := s.p.ProcessText(r.Context(), req.Prompt, true)
	if err != nil {
		s.log.WithField("error", err.Error()).Warn("generate failed, returning apology")
		writeJSON(w, http.StatusOK, generateResponse{Text: Apology})
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Text: res.Response})
}
