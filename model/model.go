package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mrinaald/ai-newsroom/core"
)

// Request captures the normalized model input: the role instruction plus the
// conversation log the answer should be based on.
type Request struct {
	Instruction string         `json:"instruction"`
	Messages    []core.Message `json:"messages"`
}

// FirstUserContent returns the content of the earliest user message, which
// is the topic of a newsroom run.
func (r Request) FirstUserContent() string {
	for _, m := range r.Messages {
		if m.Sender.IsUser() {
			return m.Content
		}
	}
	return ""
}

// LastUserContent returns the content of the most recent user message.
func (r Request) LastUserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Sender.IsUser() {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "ollama", "mock", etc.
}

// Generator produces a text answer for a request. An empty answer is a
// valid result; errors report provider faults.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts an ordinary function to a Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Model is a Generator that can describe itself.
type Model interface {
	Generator

	// Info returns information about the model implementation.
	Info() Info
}

// Describe returns g's Info when available and a generic one otherwise.
func Describe(g Generator) Info {
	if m, ok := g.(Model); ok {
		return m.Info()
	}
	return Info{Name: fmt.Sprintf("%T", g), Provider: "custom"}
}

// ErrScriptExhausted is returned by a strict MockModel that ran out of replies.
var ErrScriptExhausted = errors.New("mock model script exhausted")

type mockReply struct {
	text  string
	err   error
	block bool
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Replies are consumed in FIFO order; once the script is empty the default
// reply is used. It is safe for concurrent use.
type MockModel struct {
	mu         sync.Mutex
	info       Info
	script     []mockReply
	defaultSet bool
	fallback   mockReply
	requests   []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{info: Info{Name: name, Provider: "mock"}}
}

// Reply enqueues one successful answer per text.
func (m *MockModel) Reply(texts ...string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.script = append(m.script, mockReply{text: t})
	}
	return m
}

// Fail enqueues a provider fault.
func (m *MockModel) Fail(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockReply{err: err})
	return m
}

// Hang enqueues a call that blocks until its context is done.
func (m *MockModel) Hang() *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockReply{block: true})
	return m
}

// Default sets the answer used once the script is exhausted.
func (m *MockModel) Default(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSet = true
	m.fallback = mockReply{text: text}
	return m
}

// Strict makes an exhausted script return ErrScriptExhausted.
func (m *MockModel) Strict() *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSet = true
	m.fallback = mockReply{err: ErrScriptExhausted}
	return m
}

// Generate implements Generator.
func (m *MockModel) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	var r mockReply
	switch {
	case len(m.script) > 0:
		r = m.script[0]
		m.script = m.script[1:]
	case m.defaultSet:
		r = m.fallback
	default:
		r = mockReply{text: fmt.Sprintf("Mock response to: %s", lastContent(req))}
	}
	m.mu.Unlock()

	if r.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.text, r.err
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Generate invocations.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

func cloneRequest(req Request) Request {
	msgs := make([]core.Message, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	return req
}

func lastContent(req Request) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}
