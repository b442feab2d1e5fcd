package reply

import (
	"context"
	"errors"
	"testing"

	"support-intake-go/internal/config"
	"support-intake-go/internal/logger"
)

type fakeModel struct {
	out    string
	err    error
	prompt string
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
		want string
	}{
		{"ok", "  Happy to help!  ", nil, "Happy to help!"},
		{"error", "", errors.New("quota exceeded"), Fallback},
		{"empty", "   ", nil, Fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeModel{out: tt.out, err: tt.err}
			g := NewGenerator(m, logger.Discard())
			if got := g.Generate(context.Background(), "my order is late"); got != tt.want {
				t.Errorf("Generate = %q, want %q", got, tt.want)
			}
			if m.prompt != "my order is late" {
				t.Errorf("prompt = %q", m.prompt)
			}
		})
	}
}

func TestGenerate_NoModel(t *testing.T) {
	g := NewGenerator(nil, logger.Discard())
	if got := g.Generate(context.Background(), "hi"); got != Fallback {
		t.Errorf("Generate = %q, want fallback", got)
	}
}

func TestNew_WithoutKeyFallsBack(t *testing.T) {
	g := New(context.Background(), config.ReplyConfig{Model: "gemini-1.5-flash"}, logger.Discard())
	if got := g.Generate(context.Background(), "hi"); got != Fallback {
		t.Errorf("Generate = %q, want fallback", got)
	}
}

func TestNew_Mock(t *testing.T) {
	g := New(context.Background(), config.ReplyConfig{Mock: true}, logger.Discard())
	if got := g.Generate(context.Background(), "hi"); got == Fallback || got == "" {
		t.Errorf("mock Generate = %q", got)
	}
}
