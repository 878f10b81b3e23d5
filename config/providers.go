package config

import (
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/model"
	"github.com/mrinaald/ai-newsroom/model/anthropic"
	"github.com/mrinaald/ai-newsroom/model/ollama"
	"github.com/mrinaald/ai-newsroom/model/openai"
	"github.com/mrinaald/ai-newsroom/tool"
	"github.com/mrinaald/ai-newsroom/tool/duckduckgo"
)

// NewGenerator builds the text generation backend selected by Provider.
func (c *Config) NewGenerator(logger logging.Logger) (model.Generator, error) {
	logger = logging.With(logging.OrNoOp(logger), "provider", c.Provider)

	switch c.Provider {
	case ProviderOllama:
		m, err := ollama.NewModel(func(o *ollama.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			if c.BaseURL != "" {
				o.ServerURL = c.BaseURL
			}
			o.Temperature = c.Temperature
			o.MaxTokens = c.MaxTokens
			o.Logger = logger
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			if c.Model != "" {
				o.Model = c.Model
			}
			o.BaseURL = c.BaseURL
			o.APIKey = c.APIKey
			o.Temperature = c.Temperature
			if c.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(c.MaxTokens)
			}
			o.Logger = logger
		}), nil
	case ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			if c.Model != "" {
				o.Model = anthropicsdk.Model(c.Model)
			}
			o.BaseURL = c.BaseURL
			o.APIKey = c.APIKey
			o.Temperature = c.Temperature
			if c.MaxTokens > 0 {
				o.MaxTokens = int64(c.MaxTokens)
			}
			o.Logger = logger
		}), nil
	case ProviderMock:
		name := c.Model
		if name == "" {
			name = "mock"
		}
		return model.NewMockModel(name), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
}

// NewSearch builds the Researcher's search tool. It returns nil when search
// is disabled.
func (c *Config) NewSearch(logger logging.Logger) (tool.Tool, error) {
	if !c.Search.Enabled {
		return nil, nil
	}
	t, err := duckduckgo.New(func(o *duckduckgo.Options) {
		o.MaxResults = c.Search.MaxResults
		o.RatePerSecond = c.Search.RatePerSecond
		o.Logger = logging.OrNoOp(logger)
	})
	if err != nil {
		return nil, fmt.Errorf("create search tool: %w", err)
	}
	return t, nil
}
