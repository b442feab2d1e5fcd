package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"support-intake-go/internal/config"
	"support-intake-go/internal/httpjson"
	"support-intake-go/internal/logger"
)

// ErrUnsupportedAudio is returned when the upload is not an audio format the
// speech model can decode.
var ErrUnsupportedAudio = errors.New("unsupported audio format")

var supportedExt = map[string]bool{
	".wav": true, ".flac": true, ".mp3": true, ".mpga": true, ".mpeg": true,
	".m4a": true, ".mp4": true, ".ogg": true, ".oga": true, ".webm": true,
}

// special tokens whisper decoders leave in the text
var specialTokens = []string{"<|startoftranscript|>", "<|notimestamps|>", "<|endoftext|>", "<|en|>", "<|transcribe|>"}

// Audio is an uploaded recording.
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Transcriber turns audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}

// Client calls a whisper-compatible /v1/audio/transcriptions endpoint.
type Client struct {
	endpoint string
	model    string
	language string
	retries  uint64
	http     *http.Client
	log      *logger.Logger
}

func NewClient(cfg config.TranscriptionConfig, log *logger.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		language: cfg.Language,
		retries:  cfg.Retries,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log.Component("transcription"),
	}
}

// New returns the configured Transcriber. Mock mode returns a canned
// transcript without network access.
func New(cfg config.TranscriptionConfig, log *logger.Logger) Transcriber {
	if cfg.Mock {
		return Mock{}
	}
	return NewClient(cfg, log)
}

func (c *Client) Transcribe(ctx context.Context, a Audio) (string, error) {
	if err := CheckFormat(a.Filename); err != nil {
		return "", err
	}
	log := c.log.WithField("file", a.Filename).WithField("bytes", len(a.Data))
	log.Info("starting transcription")

	newReq := func(ctx context.Context) (*http.Request, error) {
		var b bytes.Buffer
		w := multipart.NewWriter(&b)
		part, err := w.CreateFormFile("file", filepath.Base(a.Filename))
		if err != nil {
			return nil, fmt.Errorf("creating form file: %w", err)
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, fmt.Errorf("writing audio: %w", err)
		}
		if c.model != "" {
			_ = w.WriteField("model", c.model)
		}
		if c.language != "" {
			_ = w.WriteField("language", c.language)
		}
		_ = w.WriteField("response_format", "json")
		if err := w.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &b)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	}

	var resp struct {
		Text string `json:"text"`
	}
	if err := httpjson.Do(ctx, c.http, c.retries, newReq, &resp); err != nil {
		var se *httpjson.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnsupportedMediaType || se.StatusCode == http.StatusBadRequest) {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedAudio, se.Body)
		}
		log.WithField("error", err.Error()).Error("transcription failed")
		return "", fmt.Errorf("transcription request: %w", err)
	}

	text := Clean(resp.Text)
	log.WithField("text_length", len(text)).Info("transcription complete")
	return text, nil
}

// CheckFormat rejects filenames whose extension is not a known audio format.
func CheckFormat(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExt[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupportedAudio, ext)
	}
	return nil
}

// Clean strips decoder control tokens and surrounding whitespace.
func Clean(text string) string {
	for _, t := range specialTokens {
		text = strings.ReplaceAll(text, t, "")
	}
	return strings.TrimSpace(text)
}

// Mock returns Text (or a fixed sentence) for every recording.
type Mock struct {
	Text string
}

func (m Mock) Transcribe(_ context.Context, a Audio) (string, error) {
	if err := CheckFormat(a.Filename); err != nil {
		return "", err
	}
	if m.Text != "" {
		return m.Text, nil
	}
	return "MOCK TRANSCRIPT: I need help with my order, please call me back.", nil
}
