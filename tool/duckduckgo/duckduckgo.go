// Package duckduckgo provides a web search tool backed by DuckDuckGo. Queries
// are throttled through a token bucket so a looping researcher cannot hammer
// the search endpoint.
package duckduckgo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/tools/duckduckgo"
	"golang.org/x/time/rate"

	"github.com/mrinaald/ai-newsroom/logging"
	"github.com/mrinaald/ai-newsroom/tool"
)

// Name is the tool name reported in logs and metrics.
const Name = "duckduckgo_search"

// DefaultUserAgent is sent with every search request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ai-newsroom/1.0)"

// Searcher is the subset of the langchaingo DuckDuckGo tool used here.
type Searcher interface {
	Call(ctx context.Context, input string) (string, error)
}

// Options configure the search tool.
type Options struct {
	// MaxResults bounds the number of hits folded into the result text.
	MaxResults int
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	// RatePerSecond caps the query rate. Zero or negative disables throttling.
	RatePerSecond float64
	// Burst is the token bucket size. Defaults to 1.
	Burst int
	// Searcher replaces the DuckDuckGo client, mainly for tests.
	Searcher Searcher
	Logger   logging.Logger
}

// Tool performs DuckDuckGo web searches.
type Tool struct {
	searcher Searcher
	limiter  *rate.Limiter
	logger   logging.Logger
}

// New creates the search tool.
func New(optFns ...func(o *Options)) (*Tool, error) {
	opts := Options{
		MaxResults:    5,
		UserAgent:     DefaultUserAgent,
		RatePerSecond: 1,
		Burst:         1,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	searcher := opts.Searcher
	if searcher == nil {
		ddg, err := duckduckgo.New(opts.MaxResults, opts.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("create duckduckgo client: %w", err)
		}
		searcher = ddg
	}

	t := &Tool{searcher: searcher, logger: logging.OrNoOp(opts.Logger)}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return t, nil
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return Name }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Search the web with DuckDuckGo for recent, relevant information about a topic."
}

// Call runs one search and returns the raw result text.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", tool.NewToolError(Name, "search query must not be empty", tool.CodeValidation)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", &tool.ToolError{Tool: Name, Message: err.Error(), Code: tool.CodeRateLimited, Err: err}
		}
	}

	start := time.Now()
	out, err := t.searcher.Call(ctx, query)
	logging.LogToolCall(t.logger, Name, time.Since(start), err)
	if err != nil {
		return "", &tool.ToolError{Tool: Name, Message: err.Error(), Code: tool.CodeExecution, Err: err}
	}
	return out, nil
}
