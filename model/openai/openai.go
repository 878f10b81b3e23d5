// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. Any OpenAI-compatible server (including Ollama's /v1
// endpoint) can be targeted through Options.BaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides OPENAI_API_KEY.
	APIKey string
	// BaseURL points the client at an OpenAI-compatible server.
	BaseURL string
	Logger  logging.Logger
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
	logger logging.Logger
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns)
	return &Model{client: client, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Generate implements model.Generator with a single non-streaming completion.
func (m *Model) Generate(ctx context.Context, req model.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	start := time.Now()
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err == nil && len(resp.Choices) == 0 {
		err = errors.New("no choices returned")
	}
	logging.LogModelCall(m.logger, m.opts.Model, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	return resp.Choices[0].Message.Content, nil
}

// buildMessages converts the transcript into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	turns := model.Transcript(req)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case model.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Text))
		case model.RoleAssistant:
			messages = append(messages, assistantMessage(t))
		default:
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	return messages
}

// assistantMessage carries the sender through the participant name field,
// which only accepts letters, digits, '_' and '-'.
func assistantMessage(t model.Turn) openai.ChatCompletionMessageParamUnion {
	name := participantName(t.Name)
	if name == "" {
		return openai.AssistantMessage(t.Text)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
		Role: "assistant",
		Content: openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(t.Text),
		},
		Name: openai.String(name),
	}}
}

func participantName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 64 {
			break
		}
	}
	return b.String()
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "openai",
	}
}
