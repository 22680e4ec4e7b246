// Package mcp exposes stored run reports to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	roadhttp "github.com/aretw0/roadtest/pkg/adapters/http"
	"github.com/aretw0/roadtest/pkg/domain"
	"github.com/aretw0/roadtest/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// ReportURIPrefix prefixes the resource URI of every report.
const ReportURIPrefix = "roadtest://reports/"

// ListReportsArgs are the arguments of the list_reports tool.
type ListReportsArgs struct {
	Scenario string `json:"scenario,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

// ReportSummary is one row of the list_reports result.
type ReportSummary struct {
	ID       string         `json:"id" jsonschema_description:"Report identifier"`
	Scenario string         `json:"scenario" jsonschema_description:"Scenario name"`
	Outcome  domain.Outcome `json:"outcome" jsonschema_description:"success, failure, timed_out or error"`
	Passed   bool           `json:"passed" jsonschema_description:"Outcome was success and every criterion held"`
	GameTime float64        `json:"game_time" jsonschema_description:"Simulated seconds at the end of the run"`
}

// ListReportsResult is the structured output of list_reports.
type ListReportsResult struct {
	Reports []ReportSummary `json:"reports"`
}

// Server exposes a report store as an MCP server.
type Server struct {
	store     ports.ReportStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(store ports.ReportStore, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:     store,
		logger:    logger,
		mcpServer: server.NewMCPServer("roadtest-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_reports",
		mcp.WithDescription("List stored scenario run reports, newest first."),
		mcp.WithString("scenario", mcp.Description("Only reports of this scenario")),
		mcp.WithString("outcome", mcp.Description("Only reports with this outcome"),
			mcp.Enum(string(domain.OutcomeSuccess), string(domain.OutcomeFailure), string(domain.OutcomeTimedOut), string(domain.OutcomeError)),
		),
		mcp.WithOutputSchema[ListReportsResult](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.HandleListReports))

	getTool := mcp.NewTool("get_report",
		mcp.WithDescription("Get the full report of one scenario run as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Report identifier")),
	)
	s.mcpServer.AddTool(getTool, s.HandleGetReport)
}

// HandleListReports implements the list_reports tool.
func (s *Server) HandleListReports(ctx context.Context, _ mcp.CallToolRequest, args ListReportsArgs) (ListReportsResult, error) {
	reports, err := roadhttp.LoadReports(ctx, s.store)
	if err != nil {
		return ListReportsResult{}, fmt.Errorf("list reports: %w", err)
	}
	out := ListReportsResult{Reports: []ReportSummary{}}
	for _, r := range reports {
		if args.Scenario != "" && r.Scenario != args.Scenario {
			continue
		}
		if args.Outcome != "" && string(r.Outcome) != args.Outcome {
			continue
		}
		out.Reports = append(out.Reports, ReportSummary{
			ID:       r.ID,
			Scenario: r.Scenario,
			Outcome:  r.Outcome,
			Passed:   r.Passed(),
			GameTime: r.GameTime,
		})
	}
	return out, nil
}

// HandleGetReport implements the get_report tool.
func (s *Server) HandleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.reportJSON(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) reportJSON(ctx context.Context, id string) ([]byte, error) {
	r, err := s.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrReportNotFound) {
			s.logger.Error("MCP: load report failed", "report_id", id, "err", err)
		}
		return nil, fmt.Errorf("load report %q: %w", id, err)
	}
	return json.Marshal(r)
}

func (s *Server) registerResources() {
	tmpl := mcp.NewResourceTemplate(ReportURIPrefix+"{id}", "Scenario run report",
		mcp.WithTemplateDescription("The full report of one scenario run"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcpServer.AddResourceTemplate(tmpl, s.HandleReadReport)
}

// HandleReadReport serves roadtest://reports/{id}.
func (s *Server) HandleReadReport(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, ReportURIPrefix)
	if id == uri || id == "" {
		return nil, fmt.Errorf("unexpected resource uri %q", uri)
	}
	data, err := s.reportJSON(ctx, id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
