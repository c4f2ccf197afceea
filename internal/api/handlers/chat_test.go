package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flightdeck-ai/flightdeck/internal/api/middleware"
	"github.com/flightdeck-ai/flightdeck/internal/domain"
	"github.com/flightdeck-ai/flightdeck/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQueryService is a mock implementation of QueryService
type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Query(ctx context.Context, input service.QueryInput) (*service.QueryResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueryResult), args.Error(1)
}

func authenticatedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	identity := &middleware.Identity{UserID: userID, Role: domain.UserRolePilot}
	return req.WithContext(context.WithValue(req.Context(), middleware.IdentityKey, identity))
}

func TestChatQuery_Success(t *testing.T) {
	svc := new(MockQueryService)
	handler := NewChatHandler(svc)

	svc.On("Query", mock.Anything, service.QueryInput{
		UserID:  "u1",
		Message: "What is the flap schedule?",
	}).Return(&service.QueryResult{
		Answer:         "Flaps 5 below 200 knots.",
		ConversationID: "c1",
		Sources: []service.Source{
			{Document: "FCOM Vol 1", Type: "FCOM"},
			{Document: "FCOM Vol 1", Type: "FCOM"},
		},
	}, nil)

	body, _ := json.Marshal(QueryRequest{Message: "What is the flap schedule?"})
	req := authenticatedRequest(http.MethodPost, "/api/chat/query", body, "u1")
	rec := httptest.NewRecorder()
	handler.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The answer rides under "response" and sources list one entry per
	// retrieved chunk.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "response")

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Flaps 5 below 200 knots.", resp.Response)
	assert.Equal(t, "c1", resp.ConversationID)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "FCOM Vol 1", resp.Sources[0].Document)
	svc.AssertExpectations(t)
}

func TestChatQuery_ContinuesConversation(t *testing.T) {
	svc := new(MockQueryService)
	handler := NewChatHandler(svc)

	svc.On("Query", mock.Anything, service.QueryInput{
		UserID:         "u1",
		Message:        "And at landing?",
		ConversationID: "c1",
	}).Return(&service.QueryResult{Answer: "Flaps 30.", ConversationID: "c1"}, nil)

	body, _ := json.Marshal(QueryRequest{Message: "And at landing?", ConversationID: "c1"})
	req := authenticatedRequest(http.MethodPost, "/api/chat/query", body, "u1")
	rec := httptest.NewRecorder()
	handler.Query(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestChatQuery_ServiceError(t *testing.T) {
	svc := new(MockQueryService)
	handler := NewChatHandler(svc)

	svc.On("Query", mock.Anything, mock.Anything).
		Return(nil, domain.NewDomainError(domain.ErrCodeInternalError, "completion failed"))

	body, _ := json.Marshal(QueryRequest{Message: "question"})
	req := authenticatedRequest(http.MethodPost, "/api/chat/query", body, "u1")
	rec := httptest.NewRecorder()
	handler.Query(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp["error"])
}

func TestChatQuery_BadBody(t *testing.T) {
	handler := NewChatHandler(new(MockQueryService))

	req := authenticatedRequest(http.MethodPost, "/api/chat/query", []byte("{broken"), "u1")
	rec := httptest.NewRecorder()
	handler.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
