package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

type fakeMessages struct {
	reply *anthropic.Message
	err   error
	got   anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.got = body
	return f.reply, f.err
}

func textReply(text string) *anthropic.Message {
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}}}
}

var llmConfig = config.LLMConfig{Model: "claude-sonnet-4-5", MaxTokens: 32}

func TestLLM_ReturnsFirstLine(t *testing.T) {
	fake := &fakeMessages{reply: textReply("  Hook\nIt sets up the overhand.")}
	l := ai.NewLLMWith(fake, llmConfig)

	name, err := l.Decide(context.Background(), request(technique.Standing))
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != "Hook" {
		t.Fatalf("expected Hook, got %q", name)
	}
	if fake.got.MaxTokens != 32 || string(fake.got.Model) != "claude-sonnet-4-5" {
		t.Fatalf("unexpected request params: model %q max_tokens %d", fake.got.Model, fake.got.MaxTokens)
	}
	if len(fake.got.Messages) != 1 {
		t.Fatalf("expected one user message, got %d", len(fake.got.Messages))
	}
}

func TestLLM_EmptyReply(t *testing.T) {
	l := ai.NewLLMWith(&fakeMessages{reply: textReply("   ")}, llmConfig)
	if _, err := l.Decide(context.Background(), request(technique.Standing)); !errors.Is(err, ai.ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestLLM_RequestError(t *testing.T) {
	l := ai.NewLLMWith(&fakeMessages{err: errors.New("overloaded")}, llmConfig)
	if _, err := l.Decide(context.Background(), request(technique.Standing)); err == nil {
		t.Fatal("expected error")
	}
}

func TestPrompt_ListsLegalTechniquesAndState(t *testing.T) {
	req := request(technique.GroundTop)
	req.TargetHurt = true
	req.Recent = []string{"Fighter B is taken down"}
	p := ai.Prompt(req)
	for _, want := range []string{"Round 1", "ground_top", "Ground Elbow", "your opponent is hurt", "Fighter B is taken down"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
