// Package mcpserver exposes read access to a workspace as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/output"
	"github.com/agentic-research/notional/internal/record"
	"github.com/agentic-research/notional/internal/session"
)

const defaultQueryLimit = 25

// Server wraps an MCP server whose tools call the session.
type Server struct {
	sess *session.Session
	log  *zap.Logger
	mcp  *server.MCPServer
}

// New registers the tools fetch_page, fetch_database, query_database and
// page_markdown.
func New(sess *session.Session, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		sess: sess,
		log:  log,
		mcp:  server.NewMCPServer("notional", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("fetch_page",
		mcp.WithDescription("Fetch a page with its properties as JSON"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page ID, dashed or not")),
		mcp.WithString("select", mcp.Description("Optional JSONPath applied to the page JSON")),
	), s.fetchPage)

	s.mcp.AddTool(mcp.NewTool("fetch_database",
		mcp.WithDescription("Fetch a database and list its property schema"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Database ID")),
	), s.fetchDatabase)

	s.mcp.AddTool(mcp.NewTool("query_database",
		mcp.WithDescription("Query a database and return matching pages as text"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Database ID")),
		mcp.WithString("filter", mcp.Description("Filter object as JSON, passed to the API unchanged")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of pages, default 25")),
	), s.queryDatabase)

	s.mcp.AddTool(mcp.NewTool("page_markdown",
		mcp.WithDescription("Render a page and its full body as markdown"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Page ID")),
	), s.pageMarkdown)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves the tools over stdin and stdout until EOF.
func (s *Server) ServeStdio() error { return server.ServeStdio(s.mcp) }

func (s *Server) fail(tool string, err error) (*mcp.CallToolResult, error) {
	s.log.Warn("tool failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) fetchPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.sess.FetchPage(ctx, id)
	if err != nil {
		return s.fail("fetch_page", err)
	}
	var b strings.Builder
	pr, err := output.NewPrinter(&b, output.FormatJSON, req.GetString("select", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := pr.Page(p); err != nil {
		return s.fail("fetch_page", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) fetchDatabase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	db, err := s.sess.FetchDatabase(ctx, id)
	if err != nil {
		return s.fail("fetch_database", err)
	}
	var b strings.Builder
	pr, _ := output.NewPrinter(&b, output.FormatText, "")
	if err := pr.Database(db); err != nil {
		return s.fail("fetch_database", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) queryDatabase(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := s.sess.Query(id).Limit(req.GetInt("limit", defaultQueryLimit))
	if f := req.GetString("filter", ""); f != "" {
		if !json.Valid([]byte(f)) {
			return mcp.NewToolResultError("filter is not valid JSON"), nil
		}
		q.Filter(json.RawMessage(f))
	}
	it, err := q.Execute(ctx)
	if err != nil {
		return s.fail("query_database", err)
	}

	var b strings.Builder
	for p, err := range it.All(ctx) {
		if err != nil {
			return s.fail("query_database", err)
		}
		writeSummary(&b, p)
	}
	if it.Total() == 0 {
		return mcp.NewToolResultText("no pages match"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeSummary(b *strings.Builder, p *record.Page) {
	fmt.Fprintf(b, "- %s (%s)\n", p.Title(), p.ID)
	title := p.TitleProperty()
	for name, v := range p.Properties() {
		if name == title {
			continue
		}
		if text := v.String(); text != "" {
			fmt.Fprintf(b, "    %s: %s\n", name, text)
		}
	}
}

func (s *Server) pageMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.sess.FetchPage(ctx, id)
	if err != nil {
		return s.fail("page_markdown", err)
	}
	body, err := p.LoadBody(ctx)
	if err != nil {
		return s.fail("page_markdown", err)
	}
	if err := block.LoadAll(ctx, body); err != nil {
		return s.fail("page_markdown", err)
	}
	var b strings.Builder
	pr, _ := output.NewPrinter(&b, output.FormatMarkdown, "")
	if err := pr.Page(p); err != nil {
		return s.fail("page_markdown", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}
