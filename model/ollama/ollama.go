// Package ollama provides a model.Model backed by a local Ollama server
// through langchaingo.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
)

// DefaultModel is the model pulled by a stock newsroom setup.
const DefaultModel = "llama3.1"

// DefaultServerURL is Ollama's default listen address.
const DefaultServerURL = "http://localhost:11434"

// Options configure the Ollama adapter.
type Options struct {
	Model       string
	ServerURL   string
	Temperature float64
	// MaxTokens caps the answer length. Zero leaves the server default.
	MaxTokens int
	Logger    logging.Logger
}

// ContentGenerator is the langchaingo call used by Model.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Model wraps an Ollama chat model.
type Model struct {
	llm    ContentGenerator
	opts   Options
	logger logging.Logger
}

// NewModel connects to the configured Ollama server.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions(optFns)

	llm, err := ollama.New(
		ollama.WithModel(opts.Model),
		ollama.WithServerURL(opts.ServerURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return NewModelFromClient(llm, optFns...), nil
}

// NewModelFromClient wraps an existing langchaingo model.
func NewModelFromClient(llm ContentGenerator, optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)
	return &Model{llm: llm, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:     DefaultModel,
		ServerURL: DefaultServerURL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate implements model.Generator.
func (m *Model) Generate(ctx context.Context, req model.Request) (string, error) {
	callOpts := []llms.CallOption{llms.WithTemperature(m.opts.Temperature)}
	if m.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(m.opts.MaxTokens))
	}

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, buildMessages(req), callOpts...)
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = fmt.Errorf("no choices returned")
	}
	logging.LogModelCall(m.logger, m.opts.Model, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("ollama error: %w", err)
	}

	return resp.Choices[0].Content, nil
}

func buildMessages(req model.Request) []llms.MessageContent {
	turns := model.Transcript(req, func(o *model.TranscriptOptions) {
		o.LabelSenders = true
	})
	out := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		var role schema.ChatMessageType
		switch t.Role {
		case model.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case model.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, t.Text))
	}
	return out
}

// Info describes the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
