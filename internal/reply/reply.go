// Package reply produces the conversational answer returned to the caller.
package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"support-intake-go/internal/config"
	"support-intake-go/internal/logger"
)

// Fallback is returned whenever the generative service cannot answer.
const Fallback = "We have received your concern and will address it shortly."

// Persona is the fixed system instruction for every reply.
const Persona = `You are an AI assistant that interacts with users professionally and empathetically.
If the user explicitly requests BPO scheduling, proceed with scheduling and send a confirmation email.
Otherwise, engage in polite and respectful conversation, responding appropriately based on the user's emotions.
Ensure clarity, professionalism, and a friendly tone in all responses.`

// Model is a text-in/text-out generative backend.
type Model interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator never fails: backend errors are logged and replaced by Fallback.
type Generator struct {
	model Model
	log   *logger.Logger
}

func NewGenerator(m Model, log *logger.Logger) *Generator {
	return &Generator{model: m, log: log.Component("reply")}
}

// New builds the configured Generator. Without an API key (and outside mock
// mode) every reply is the fallback text.
func New(ctx context.Context, cfg config.ReplyConfig, log *logger.Logger) *Generator {
	if cfg.Mock {
		return NewGenerator(Mock{}, log)
	}
	m, err := NewGemini(ctx, cfg)
	if err != nil {
		log.Component("reply").WithError(err).Warn("gemini unavailable, replies will use the fallback text")
		return NewGenerator(nil, log)
	}
	return NewGenerator(m, log)
}

// Generate returns a reply to text.
func (g *Generator) Generate(ctx context.Context, text string) string {
	if g.model == nil {
		return Fallback
	}
	out, err := g.model.GenerateText(ctx, text)
	if err != nil {
		g.log.WithError(err).Warn("reply generation failed, using fallback")
		return Fallback
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Fallback
	}
	return out
}

// Gemini calls the Gemini API with Persona as system instruction.
type Gemini struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGemini(ctx context.Context, cfg config.ReplyConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(Persona, genai.RoleUser),
			Temperature:       genai.Ptr(cfg.Temperature),
			MaxOutputTokens:   cfg.MaxTokens,
		},
	}, nil
}

func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, g.config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response candidates from Gemini")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			result.WriteString(part.Text)
		}
	}
	return result.String(), nil
}

// Mock echoes a canned empathetic reply.
type Mock struct{}

func (Mock) GenerateText(_ context.Context, prompt string) (string, error) {
	return "Thanks for reaching out. We understand your concern and our team is here to help.", nil
}
