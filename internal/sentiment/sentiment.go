// Package sentiment classifies text on the 5-point "1 star".."5 stars" scale
// through a hosted text-classification model.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"support-intake-go/internal/config"
	"support-intake-go/internal/httpjson"
	"support-intake-go/internal/logger"
	"support-intake-go/internal/types"
)

// Classifier labels the sentiment of text.
type Classifier interface {
	Classify(ctx context.Context, text string) (types.Sentiment, error)
}

// Client calls a HuggingFace-style inference endpoint:
// POST {"inputs": text} -> [[{"label": "...", "score": 0.9}, ...]].
type Client struct {
	endpoint string
	token    string
	retries  uint64
	http     *http.Client
	log      *logger.Logger
}

func NewClient(cfg config.SentimentConfig, log *logger.Logger) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		retries:  cfg.Retries,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log.Component("sentiment"),
	}
}

// New returns the configured Classifier.
func New(cfg config.SentimentConfig, log *logger.Logger) Classifier {
	if cfg.Mock {
		return Mock{}
	}
	return NewClient(cfg, log)
}

func (c *Client) Classify(ctx context.Context, text string) (types.Sentiment, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return types.Sentiment{}, err
	}
	newReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return req, nil
	}

	var raw json.RawMessage
	if err := httpjson.Do(ctx, c.http, c.retries, newReq, &raw); err != nil {
		c.log.WithError(err).Error("sentiment request failed")
		return types.Sentiment{}, fmt.Errorf("sentiment request: %w", err)
	}
	s, err := parse(raw)
	if err != nil {
		return types.Sentiment{}, err
	}
	c.log.WithField("label", s.Label).WithField("score", s.Score).Debug("sentiment classified")
	return s, nil
}

// parse accepts both the nested [[...]] and the flat [...] response shapes
// and returns the highest-scoring label.
func parse(raw json.RawMessage) (types.Sentiment, error) {
	var nested [][]types.Sentiment
	var candidates []types.Sentiment
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, n := range nested {
			candidates = append(candidates, n...)
		}
	} else if err := json.Unmarshal(raw, &candidates); err != nil {
		return types.Sentiment{}, fmt.Errorf("unexpected sentiment response: %s", raw)
	}
	if len(candidates) == 0 {
		return types.Sentiment{}, errors.New("sentiment response has no labels")
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, nil
}

// Mock returns a fixed sentiment ("3 stars" when Label is empty).
type Mock struct {
	Label string
	Score float64
}

func (m Mock) Classify(context.Context, string) (types.Sentiment, error) {
	if m.Label == "" {
		return types.Sentiment{Label: "3 stars", Score: 0.5}, nil
	}
	return types.Sentiment{Label: m.Label, Score: m.Score}, nil
}
