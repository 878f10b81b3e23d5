// Package anthropic provides a model wrapper for the Anthropic Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "claude-sonnet-4-20250514"

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
	BaseURL     string
	Logger      logging.Logger
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
	logger logging.Logger
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)
	return &Model{client: client, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       anthropic.Model(DefaultModel),
		Temperature: 0,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate implements model.Generator. The instruction travels as the system
// prompt; the answer is the concatenation of all text blocks.
func (m *Model) Generate(ctx context.Context, req model.Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    buildMessages(req),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}
	if strings.TrimSpace(req.Instruction) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instruction}}
	}

	start := time.Now()
	resp, err := m.client.Messages.New(ctx, params)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	logging.LogModelCall(m.logger, string(m.opts.Model), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	return b.String(), nil
}

// buildMessages converts the conversation log to Anthropic message format.
// Turns alternate strictly and the last one is always a user turn.
func buildMessages(req model.Request) []anthropic.MessageParam {
	turns := model.Transcript(req, func(o *model.TranscriptOptions) {
		o.IncludeSystem = false
		o.MergeConsecutive = true
		o.TrailingUser = model.DefaultTrailingUser
		o.LabelSenders = true
	})

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == model.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}
	return messages
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     string(m.opts.Model),
		Provider: "anthropic",
	}
}
