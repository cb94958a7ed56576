package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cory-johannsen/fightsim/internal/config"
	"github.com/cory-johannsen/fightsim/internal/game/bout"
)

// ErrEmptyReply is returned when the model answers without any text.
var ErrEmptyReply = errors.New("ai: model returned no text")

const systemPrompt = "You are the corner of a mixed martial artist in a simulated fight. " +
	"Reply with exactly one technique name from the list you are given and nothing else."

// MessageCreator is the subset of the Anthropic client the LLM brain uses.
type MessageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// LLM asks an Anthropic model for each decision.
type LLM struct {
	messages  MessageCreator
	model     anthropic.Model
	maxTokens int64
}

// NewLLM builds an LLM brain backed by the Anthropic API. An empty API key
// defers to the SDK's ANTHROPIC_API_KEY environment lookup.
func NewLLM(cfg config.LLMConfig) *LLM {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	client := anthropic.NewClient(opts...)
	return NewLLMWith(&client.Messages, cfg)
}

// NewLLMWith builds an LLM brain on an existing message client.
//
// Precondition: messages must not be nil.
func NewLLMWith(messages MessageCreator, cfg config.LLMConfig) *LLM {
	if messages == nil {
		panic("ai.NewLLMWith: messages must not be nil")
	}
	return &LLM{messages: messages, model: anthropic.Model(cfg.Model), maxTokens: cfg.MaxTokens}
}

// Decide prompts the model and returns the first line of its reply.
func (l *LLM) Decide(ctx context.Context, req bout.DecisionRequest) (string, error) {
	msg, err := l.messages.New(ctx, anthropic.MessageNewParams{
		Model:     l.model,
		MaxTokens: l.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: anthropic request: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if line := firstLine(block.Text); line != "" {
			return line, nil
		}
	}
	return "", ErrEmptyReply
}

// Prompt renders req as the user message sent to the model.
func Prompt(req bout.DecisionRequest) string {
	var b strings.Builder
	self, opp := req.Self, req.Opponent
	fmt.Fprintf(&b, "Round %d, %d seconds left.\n", req.Round, req.TimeRemaining)
	fmt.Fprintf(&b, "You: %s, health %.0f, stamina %.0f, position %s.\n",
		self.Profile.DisplayName(), self.Health, self.Stamina, self.Position)
	fmt.Fprintf(&b, "Opponent: %s, health %.0f, stamina %.0f, position %s.\n",
		opp.Profile.DisplayName(), opp.Health, opp.Stamina, opp.Position)
	if len(req.Recent) > 0 {
		b.WriteString("Recent action:\n")
		for _, line := range req.Recent {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	var notes []string
	if req.Winning {
		notes = append(notes, "you are ahead on damage")
	}
	if req.Tired {
		notes = append(notes, "you are tired")
	}
	if req.TargetHurt {
		notes = append(notes, "your opponent is hurt")
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, "Note: %s.\n", strings.Join(notes, "; "))
	}
	fmt.Fprintf(&b, "Legal techniques: %s\n", strings.Join(req.Legal, ", "))
	b.WriteString("Which technique do you throw?")
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
