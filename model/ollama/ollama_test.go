package ollama

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/mrinaald/ai-newsroom/core"
	"github.com/mrinaald/ai-newsroom/model"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	resp, _ := args.Get(0).(*llms.ContentResponse)
	return resp, args.Error(1)
}

func request() model.Request {
	return model.Request{
		Instruction: "research",
		Messages: []core.Message{
			core.NewUserMessage("topic"),
			core.NewMessage(core.SenderResearcher, "notes"),
		},
	}
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(request())

	require.Len(t, msgs, 3)
	assert.Equal(t, schema.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, msgs[1].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, msgs[2].Role)
	assert.Equal(t, llms.TextContent{Text: "topic"}, msgs[1].Parts[0])
	assert.Equal(t, llms.TextContent{Text: "Researcher: notes"}, msgs[2].Parts[0])
}

func TestGenerate(t *testing.T) {
	llm := &mockLLM{}
	llm.On("GenerateContent", mock.Anything, mock.Anything).
		Return(&llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "findings"}}}, nil)

	m := NewModelFromClient(llm)
	out, err := m.Generate(context.Background(), request())

	require.NoError(t, err)
	assert.Equal(t, "findings", out)
	assert.Equal(t, model.Info{Name: DefaultModel, Provider: "ollama"}, m.Info())
	llm.AssertExpectations(t)
}

func TestGenerateErrors(t *testing.T) {
	t.Run("fault", func(t *testing.T) {
		llm := &mockLLM{}
		llm.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		_, err := NewModelFromClient(llm).Generate(context.Background(), request())
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("no choices", func(t *testing.T) {
		llm := &mockLLM{}
		llm.On("GenerateContent", mock.Anything, mock.Anything).Return(&llms.ContentResponse{}, nil)

		_, err := NewModelFromClient(llm).Generate(context.Background(), request())
		assert.ErrorContains(t, err, "no choices returned")
	})
}
