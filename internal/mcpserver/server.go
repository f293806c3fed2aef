// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes newsletter tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/newsdesk/internal/newsletter"
)

const formatURI = "newsdesk://document-format"

// Server wraps the MCP server with newsletter tools.
type Server struct {
	mcp  *server.MCPServer
	svc  *newsletter.Service
	file string
}

// New creates a new MCP server bound to one document.
func New(svc *newsletter.Service, file string, version string) *Server {
	s := &Server{svc: svc, file: file}

	s.mcp = server.NewMCPServer(
		"newsdesk",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("show_document",
		mcp.WithDescription("Return the full Markdown of the newsletter document."),
	), s.showDocument)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("Return the document outline: title, the sections present with their bodies, and registered sections that are missing."),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("refresh_section",
		mcp.WithDescription("Fetch fresh records for one section and write them into the document. "+
			"Sections: news, releases, upcoming, videos, demos."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name or slug (e.g. videos)")),
	), s.refreshSection)

	s.mcp.AddTool(mcp.NewTool("update_all",
		mcp.WithDescription("Refresh every section in order. Failing sections are reported and skipped."),
	), s.updateAll)

	s.mcp.AddTool(mcp.NewTool("add_release",
		mcp.WithDescription("Add one release to the top of the Recent Enterprise Releases section."),
		mcp.WithString("date", mcp.Required(), mcp.Description(`Release date, e.g. "July 25" or "2025-07-25"`)),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Release line, e.g. Spring Boot 3.4.7")),
	), s.addRelease)

	s.mcp.AddTool(mcp.NewTool("preview_news",
		mcp.WithDescription("Render the latest news entries as Markdown without writing the document."),
		mcp.WithNumber("limit", mcp.Description("Number of entries (default from config)")),
	), s.previewNews)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the newsletter document format."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Newsletter Document Format",
			mcp.WithResourceDescription("Layout and section rules of the newsletter document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func origin(ctx context.Context) context.Context {
	return newsletter.WithOrigin(ctx, newsletter.OriginMCP)
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) showDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.svc.Show(ctx, s.file)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", s.file, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listSections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outline, err := s.svc.Sections(ctx, s.file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outline), nil
}

func (s *Server) refreshSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Refresh(origin(ctx), s.file, section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) updateAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outcomes, err := s.svc.UpdateAll(origin(ctx), s.file)
	r := jsonResult(outcomes)
	if err != nil {
		r.IsError = true
	}
	return r, nil
}

func (s *Server) addRelease(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := req.RequireString("summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.AddRelease(origin(ctx), s.file, date, summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s (%s)", summary, date)), nil
}

func (s *Server) previewNews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := s.svc.PreviewNews(ctx, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if body == "" {
		return mcp.NewToolResultText("no news entries"), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) getDocumentFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
