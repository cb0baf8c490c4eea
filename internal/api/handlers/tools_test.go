package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
)

func TestToolbox_Catalogue(t *testing.T) {
	svc, _, _ := testServices()
	tb := NewToolbox(svc)

	var names []string
	for _, s := range tb.Specs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"search_ticker_symbol",
		"get_stock_performance",
		"get_financial_news",
		"get_general_news",
		"get_google_news",
		"summarize_company_insights",
		"generate_company_briefing",
		"list_tools",
	}, names)

	out, err := tb.Call(context.Background(), "list_tools", nil)
	require.NoError(t, err)
	assert.Len(t, out, len(names))
}

func TestToolbox_NewsModes(t *testing.T) {
	svc, news, _ := testServices()
	tb := NewToolbox(svc)
	ctx := context.Background()

	_, err := tb.Call(ctx, "get_financial_news", json.RawMessage(`{"company_name":"Microsoft"}`))
	require.NoError(t, err)
	_, err = tb.Call(ctx, "get_general_news", json.RawMessage(`{"company_name":"Microsoft"}`))
	require.NoError(t, err)
	_, err = tb.Call(ctx, "get_google_news", json.RawMessage(`{"query":"Microsoft MSFT"}`))
	require.NoError(t, err)

	assert.Equal(t, []newsCall{
		{"Microsoft", contracts.ModeCurated},
		{"Microsoft", contracts.ModeBroad},
		{"Microsoft MSFT", contracts.ModeSyndication},
	}, news.calls)
}

func TestToolbox_Errors(t *testing.T) {
	svc, _, _ := testServices()
	tb := NewToolbox(svc)
	ctx := context.Background()

	_, err := tb.Call(ctx, "get_weather", nil)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Equal(t, http.StatusNotFound, toolStatus(err))

	_, err = tb.Call(ctx, "get_stock_performance", json.RawMessage(`{}`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	_, err = tb.Call(ctx, "search_ticker_symbol", json.RawMessage(`{"company_name": 7}`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))
	assert.Equal(t, http.StatusBadRequest, toolStatus(err))

	_, err = tb.Call(ctx, "get_stock_performance", json.RawMessage(`{"stock_ticker":"ZZZZ"}`))
	assert.True(t, errors.Is(err, contracts.ErrDataUnavailable))
	assert.Equal(t, http.StatusBadGateway, toolStatus(err))
}

func TestToolbox_SummarizeInsights(t *testing.T) {
	svc, _, _ := testServices()
	tb := NewToolbox(svc)

	args := json.RawMessage(`{
		"stock_data": {"symbol":"MSFT","price":300,"change":5,"change_percent":"1.6949%","open":295,"high":302,"low":294,"volume":20000000},
		"news_articles": [{"title":"A","source":"Reuters","url":"https://r/a"},{"title":"B","source":"CNBC","url":"https://c/b"}],
		"company_name": "Microsoft"
	}`)
	out, err := tb.Call(context.Background(), "summarize_company_insights", args)
	require.NoError(t, err)

	insights, ok := out.(*contracts.Insights)
	require.True(t, ok)
	assert.Equal(t, "MSFT", insights.Symbol)
	assert.Equal(t, 2, insights.NewsCount)

	_, err = tb.Call(context.Background(), "summarize_company_insights", json.RawMessage(`{"company_name":"Microsoft"}`))
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	// high below low does not decode into a record
	bad := json.RawMessage(`{"stock_data":{"symbol":"MSFT","high":1,"low":2},"company_name":"Microsoft"}`)
	_, err = tb.Call(context.Background(), "summarize_company_insights", bad)
	assert.True(t, errors.Is(err, ErrInvalidArguments))
}

func TestToolbox_GenerateBriefingArchives(t *testing.T) {
	svc, _, arch := testServices()
	tb := NewToolbox(svc)

	out, err := tb.Call(context.Background(), "generate_company_briefing",
		json.RawMessage(`{"company_name":"Microsoft","stock_ticker":"MSFT"}`))
	require.NoError(t, err)

	resp, ok := out.(BriefingResponse)
	require.True(t, ok)
	assert.Contains(t, resp.FormattedBriefing, "## Microsoft (MSFT)")

	_, err = arch.Get(context.Background(), "id-MSFT")
	assert.NoError(t, err)
}

func dialSocket(t *testing.T, svc Services) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(NewToolSocket(NewToolbox(svc), logger.Nop()))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type rawResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *ToolError      `json:"error"`
}

func TestToolSocket_RoundTrip(t *testing.T) {
	svc, _, _ := testServices()
	conn := dialSocket(t, svc)

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "1", Tool: "search_ticker_symbol", Arguments: json.RawMessage(`{"company_name":"Microsoft"}`)}))

	var resp rawResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "1", resp.ID)
	assert.Nil(t, resp.Error)

	var result contracts.TickerResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, "MSFT", result.Ticker)
}

func TestToolSocket_ErrorsKeepConnectionOpen(t *testing.T) {
	svc, _, _ := testServices()
	conn := dialSocket(t, svc)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	var resp rawResponse
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusBadRequest, resp.Error.Code)

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "2", Tool: "nope"}))
	resp = rawResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "2", resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusNotFound, resp.Error.Code)

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "3", Tool: "get_stock_performance", Arguments: json.RawMessage(`{"stock_ticker":"ZZZZ"}`)}))
	resp = rawResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "3", resp.ID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, http.StatusBadGateway, resp.Error.Code)
}

func TestToolSocket_ConcurrentCallsMatchedByID(t *testing.T) {
	svc, _, _ := testServices()
	svc.Briefings = fakeBriefer{delay: 100 * time.Millisecond}
	conn := dialSocket(t, svc)

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "slow", Tool: "generate_company_briefing", Arguments: json.RawMessage(`{"stock_ticker":"MSFT"}`)}))
	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "fast", Tool: "list_tools"}))

	var first, second rawResponse
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "fast", first.ID)
	assert.Equal(t, "slow", second.ID)
	assert.Nil(t, second.Error)
}

func TestToolSocket_RefusesCallsBeyondLimit(t *testing.T) {
	svc, _, _ := testServices()
	svc.Briefings = fakeBriefer{delay: 300 * time.Millisecond}
	conn := dialSocket(t, svc)

	for i := 0; i < maxInflight; i++ {
		id := fmt.Sprintf("slow-%d", i)
		require.NoError(t, conn.WriteJSON(ToolRequest{ID: id, Tool: "generate_company_briefing", Arguments: json.RawMessage(`{"stock_ticker":"MSFT"}`)}))
	}
	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "extra", Tool: "list_tools"}))

	var busy rawResponse
	require.NoError(t, conn.ReadJSON(&busy))
	assert.Equal(t, "extra", busy.ID)
	require.NotNil(t, busy.Error)
	assert.Equal(t, http.StatusTooManyRequests, busy.Error.Code)
	assert.Equal(t, ErrBusy.Error(), busy.Error.Message)

	seen := map[string]bool{}
	for i := 0; i < maxInflight; i++ {
		var resp rawResponse
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Nil(t, resp.Error)
		seen[resp.ID] = true
	}
	assert.Len(t, seen, maxInflight)

	// slots free again once the slow calls finish
	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "after", Tool: "list_tools"}))
	var after rawResponse
	require.NoError(t, conn.ReadJSON(&after))
	assert.Equal(t, "after", after.ID)
	assert.Nil(t, after.Error)
}
