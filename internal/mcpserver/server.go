// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes shajara family trees for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/shajara/internal/apperr"
	"github.com/starford/shajara/internal/models"
	"github.com/starford/shajara/internal/treeservice"
)

// ContractURI is the resource URI of the GEDCOM subset contract.
const ContractURI = "shajara://gedcom-subset"

// TreeService is the read-only subset of treeservice.Service the tools use.
type TreeService interface {
	Families(ctx context.Context) []treeservice.FamilyInfo
	DefaultRoot(ctx context.Context, slug string) (*treeservice.RootInfo, error)
	Person(ctx context.Context, slug, id string) (*treeservice.PersonDetail, error)
	Lineage(ctx context.Context, slug, id string) (*treeservice.LineageView, error)
	Search(ctx context.Context, slug, query string, limit int) ([]treeservice.SearchHit, error)
	SearchAll(ctx context.Context, query string, limit int) ([]models.PersonSummary, error)
}

var _ TreeService = (*treeservice.Service)(nil)

// Server wraps the MCP server with shajara tools.
type Server struct {
	mcp *server.MCPServer
	svc TreeService
}

// New creates a new MCP server with all shajara tools registered.
func New(svc TreeService, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Shajara",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_families",
		mcp.WithDescription("List the configured family trees and whether their GEDCOM source is loaded."),
	), s.listFamilies)

	s.mcp.AddTool(mcp.NewTool("search_people",
		mcp.WithDescription("Search people by name. Case and Arabic diacritics are ignored; "+
			"every word of the query must match. Without a family, all sources are searched."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("family", mcp.Description("Optional family slug to restrict the search")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPeople)

	s.mcp.AddTool(mcp.NewTool("get_person",
		mcp.WithDescription("Get a person with nasab, dates, parents, siblings, spouses and children."),
		mcp.WithString("family", mcp.Required(), mcp.Description("Family slug")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Individual id including @ delimiters (e.g. @I1@)")),
	), s.getPerson)

	s.mcp.AddTool(mcp.NewTool("get_default_root",
		mcp.WithDescription("Get the individual the family tree starts from."),
		mcp.WithString("family", mcp.Required(), mcp.Description("Family slug")),
	), s.getDefaultRoot)

	s.mcp.AddTool(mcp.NewTool("get_lineage",
		mcp.WithDescription("List the ids of all ancestors and descendants of a person."),
		mcp.WithString("family", mcp.Required(), mcp.Description("Family slug")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Individual id including @ delimiters")),
	), s.getLineage)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the GEDCOM subset shajara understands. "+
			"Call this before interpreting dates, names or privacy markers."),
	), s.getFormatContract)

	// Resource: GEDCOM subset contract.
	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "GEDCOM Subset Contract",
			mcp.WithResourceDescription("GEDCOM records and tags read by shajara."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult turns a domain error into a tool error the model can act on.
func errorResult(err error, subject string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrUnknownFamily):
		return mcp.NewToolResultError(fmt.Sprintf("unknown family: %s (call list_families)", subject))
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", subject))
	case errors.Is(err, apperr.ErrSourceNotLoaded):
		return mcp.NewToolResultError(fmt.Sprintf("source not loaded for family %s", subject))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listFamilies(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Families(ctx))
}

func (s *Server) searchPeople(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	family := req.GetString("family", "")
	limit := req.GetInt("limit", treeservice.DefaultSearchLimit)

	if family == "" {
		results, err := s.svc.SearchAll(ctx, query, limit)
		if err != nil {
			return errorResult(err, query), nil
		}
		return jsonResult(results)
	}
	hits, err := s.svc.Search(ctx, family, query, limit)
	if err != nil {
		return errorResult(err, family), nil
	}
	return jsonResult(hits)
}

func (s *Server) getPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family, err := req.RequireString("family")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Person(ctx, family, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return errorResult(err, id), nil
		}
		return errorResult(err, family), nil
	}
	return jsonResult(p)
}

func (s *Server) getDefaultRoot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family, err := req.RequireString("family")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := s.svc.DefaultRoot(ctx, family)
	if err != nil {
		return errorResult(err, family), nil
	}
	return jsonResult(root)
}

func (s *Server) getLineage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family, err := req.RequireString("family")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.Lineage(ctx, family, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return errorResult(err, id), nil
		}
		return errorResult(err, family), nil
	}
	return jsonResult(l)
}

func (s *Server) getFormatContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GedcomSubsetContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     GedcomSubsetContract,
		},
	}, nil
}
