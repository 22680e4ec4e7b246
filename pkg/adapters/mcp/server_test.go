package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/roadtest/pkg/adapters/mcp"
	"github.com/aretw0/roadtest/pkg/adapters/memory"
	"github.com/aretw0/roadtest/pkg/domain"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *mcp.Server {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, &domain.Report{ID: "r1", Scenario: "follow", Outcome: domain.OutcomeSuccess, GameTime: 12.5, StartedAt: start}))
	require.NoError(t, store.Save(ctx, &domain.Report{ID: "r2", Scenario: "merge", Outcome: domain.OutcomeTimedOut, GameTime: 30, StartedAt: start.Add(time.Minute)}))
	return mcp.NewServer(store, "test", nil)
}

func TestListReports(t *testing.T) {
	s := newServer(t)

	all, err := s.HandleListReports(context.Background(), mcpgo.CallToolRequest{}, mcp.ListReportsArgs{})
	require.NoError(t, err)
	require.Len(t, all.Reports, 2)
	assert.Equal(t, "r2", all.Reports[0].ID)
	assert.False(t, all.Reports[0].Passed)
	assert.True(t, all.Reports[1].Passed)

	filtered, err := s.HandleListReports(context.Background(), mcpgo.CallToolRequest{}, mcp.ListReportsArgs{Outcome: "success"})
	require.NoError(t, err)
	require.Len(t, filtered.Reports, 1)
	assert.Equal(t, 12.5, filtered.Reports[0].GameTime)

	none, err := s.HandleListReports(context.Background(), mcpgo.CallToolRequest{}, mcp.ListReportsArgs{Scenario: "cut-in"})
	require.NoError(t, err)
	assert.Empty(t, none.Reports)
}

func callGet(t *testing.T, s *mcp.Server, args map[string]any) *mcpgo.CallToolResult {
	t.Helper()
	req := mcpgo.CallToolRequest{}
	req.Params.Name = "get_report"
	req.Params.Arguments = args
	res, err := s.HandleGetReport(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestGetReport(t *testing.T) {
	s := newServer(t)

	res := callGet(t, s, map[string]any{"id": "r2"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcpgo.TextContent)
	require.True(t, ok)

	var got domain.Report
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, "merge", got.Scenario)
	assert.Equal(t, domain.OutcomeTimedOut, got.Outcome)

	assert.True(t, callGet(t, s, map[string]any{"id": "nope"}).IsError)
	assert.True(t, callGet(t, s, map[string]any{}).IsError, "id is required")
}

func TestReadReportResource(t *testing.T) {
	s := newServer(t)

	req := mcpgo.ReadResourceRequest{}
	req.Params.URI = mcp.ReportURIPrefix + "r1"
	contents, err := s.HandleReadReport(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcpgo.TextResourceContents)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.Contains(t, text.Text, `"scenario":"follow"`)

	req.Params.URI = "roadtest://other/r1"
	_, err = s.HandleReadReport(context.Background(), req)
	assert.Error(t, err)
}
