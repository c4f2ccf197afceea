package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockAPI) CreateChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func newTestClient(api API, dimensions int) *Client {
	return &Client{api: api, dimensions: dimensions}
}

func TestGenerateEmbedding_EmptyText(t *testing.T) {
	client := newTestClient(new(MockAPI), 3)

	_, err := client.GenerateEmbedding(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestGenerateEmbedding_Success(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api, 3)

	api.On("CreateEmbeddings", mock.Anything, "flap schedule").Return([]float32{0.1, 0.2, 0.3}, nil)

	embedding, err := client.GenerateEmbedding(context.Background(), "flap schedule")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestGenerateEmbedding_WrongDimensions(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api, 3)

	api.On("CreateEmbeddings", mock.Anything, mock.Anything).Return([]float32{0.1, 0.2}, nil)

	_, err := client.GenerateEmbedding(context.Background(), "flap schedule")
	assert.ErrorIs(t, err, ErrWrongDimensions)
}

func TestGenerateEmbedding_APIError(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api, 3)

	api.On("CreateEmbeddings", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	_, err := client.GenerateEmbedding(context.Background(), "flap schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCreateCompletion_EmptyMessages(t *testing.T) {
	client := newTestClient(new(MockAPI), 3)

	_, err := client.CreateCompletion(context.Background(), nil)
	assert.Error(t, err)
}

func TestCreateCompletion_Success(t *testing.T) {
	api := new(MockAPI)
	client := newTestClient(api, 3)

	messages := []ChatMessage{
		{Role: "system", Content: "context"},
		{Role: "user", Content: "question"},
	}
	api.On("CreateChatCompletion", mock.Anything, messages).Return("answer", nil)

	answer, err := client.CreateCompletion(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
}

func TestNewClientFromEnv_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClientFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
