package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer_insight_chatbot/internal/config"
	"customer_insight_chatbot/internal/core"
	"customer_insight_chatbot/internal/dataset"
	"customer_insight_chatbot/internal/nodes"
	"customer_insight_chatbot/internal/storage"
)

const customersCSV = `Cluster,Annual_Income,Spending_Score,Average_Order_Value,Number_of_Orders,Review_Score,Age,Device_Used,Preferred_Payment_Method,Product_Category,Customer_Region,Gender
0,50000,30,100,5,3.5,25,Mobile,Credit Card,Books,North,Male
1,75000,50,150,8,4.0,35,Desktop,PayPal,Electronics,South,Female
1,85000,60,250,10,4.5,45,Mobile,PayPal,Electronics,South,Female
2,100000,70,200,12,4.5,45,Tablet,Debit Card,Electronics,East,Male
`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	table, err := dataset.Parse("customers.csv", strings.NewReader(customersCSV))
	require.NoError(t, err)

	node := nodes.NewResponseNode(nodes.NewResponder(nodes.DefaultConfig()), table)
	processor, err := core.NewProcessor(ctx, core.Config{MaxHistory: 4}, storage.NewMemorySessionManager(time.Minute), node)
	require.NoError(t, err)

	tools, err := nodes.NewToolSet(ctx, table)
	require.NoError(t, err)

	return NewRouter(config.ServerConfig{Mode: gin.TestMode}, processor, tools)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestChatThreadsMemoryAcrossRequests(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/chat", `{"message": "Which cluster buys Electronics?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var first chatResponse
	decode(t, w, &first)
	assert.NotEmpty(t, first.ConversationID)
	assert.Equal(t, "product_to_cluster", string(first.Intent))
	assert.Contains(t, first.Response, "Cluster 1")
	assert.False(t, first.Timestamp.IsZero())

	w = do(t, r, http.MethodPost, "/api/chat",
		`{"message": "What's their income?", "conversation_id": "`+first.ConversationID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var second chatResponse
	decode(t, w, &second)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, "follow_up", string(second.Intent))
	assert.Contains(t, second.Response, "$80,000.00")

	// a different conversation has its own memory
	w = do(t, r, http.MethodPost, "/api/chat", `{"message": "What's their income?", "conversation_id": "other"}`)
	var other chatResponse
	decode(t, w, &other)
	assert.Contains(t, other.Response, "mention a product category or a cluster first")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/chat", `{"message": "   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"empty message"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryAndReset(t *testing.T) {
	r := newTestRouter(t)

	for _, msg := range []string{"hello", "cluster 1", "What's their income?"} {
		w := do(t, r, http.MethodPost, "/api/chat", `{"message": "`+msg+`", "conversation_id": "c1"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/conversations/c1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history historyResponse
	decode(t, w, &history)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, "cluster 1", history.Messages[0].Content)
	assert.Equal(t, "assistant", history.Messages[3].Role)

	w = do(t, r, http.MethodPost, "/api/conversations/c1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/conversations/c1/history", "")
	decode(t, w, &history)
	assert.Empty(t, history.Messages)

	w = do(t, r, http.MethodPost, "/api/chat", `{"message": "What's their income?", "conversation_id": "c1"}`)
	var reply chatResponse
	decode(t, w, &reply)
	assert.Contains(t, reply.Response, "mention a product category or a cluster first")
}

func TestTools(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Tools []toolDescription `json:"tools"`
	}
	decode(t, w, &list)
	require.Len(t, list.Tools, 3)
	assert.Equal(t, "cluster_summary", list.Tools[0].Name)

	w = do(t, r, http.MethodPost, "/api/tools/cluster_summary", `{"cluster_id": 1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "80,000.00")

	w = do(t, r, http.MethodPost, "/api/tools/nope", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
