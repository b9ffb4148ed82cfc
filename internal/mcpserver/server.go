// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Othala people tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/people"
	"github.com/starford/othala/internal/peopleservice"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
)

const datasetFormatURI = "othala://dataset-format"

// Server wraps the MCP server with Othala tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *peopleservice.Service
	files storage.Provider
	db    *store.DB
}

// New creates a new MCP server with all Othala tools registered.
func New(svc *peopleservice.Service, files storage.Provider, db *store.DB) *Server {
	s := &Server{svc: svc, files: files, db: db}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_people",
		mcp.WithDescription("List people with parents resolved, filtered and sorted the same way as the people page."),
		mcp.WithString("sex", mcp.Description(`"m" or "f"; empty for everyone`)),
		mcp.WithString("query", mcp.Description("Case-insensitive substring of the name")),
		mcp.WithString("centuries", mcp.Description(`Comma-separated birth centuries, e.g. "18,19"`)),
		mcp.WithString("sort", mcp.Description("Sort field: name, sex, born or died")),
		mcp.WithString("order", mcp.Description(`"desc" for descending`)),
	), s.listPeople)

	s.mcp.AddTool(mcp.NewTool("get_person",
		mcp.WithDescription("Get one person by slug, with mother and father resolved by name."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Person slug (e.g. emile-haverbeke-1877)")),
	), s.getPerson)

	s.mcp.AddTool(mcp.NewTool("get_dataset_contract",
		mcp.WithDescription("Returns the canonical Othala dataset format contract. "+
			"Call this before uploading datasets to ensure correct structure."),
	), s.getDatasetContract)

	s.mcp.AddTool(mcp.NewTool("upload_dataset",
		mcp.WithDescription("Add a people dataset file from an http(s) URL or a base64 data URI. "+
			"Content MUST follow the dataset format contract (get_dataset_contract or the "+
			datasetFormatURI+" resource)."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:application/json;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Target file name (.json, .yaml or .yml); derived from the URL when empty")),
	), s.uploadDataset)

	// Resource: dataset format contract.
	s.mcp.AddResource(
		mcp.NewResource(datasetFormatURI, "Dataset Format Contract",
			mcp.WithResourceDescription("Canonical people dataset format that all dataset files must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDatasetFormatResource,
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

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func (s *Server) listPeople(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := url.Values{}
	for _, key := range []string{people.ParamSex, people.ParamQuery, people.ParamSort, people.ParamOrder} {
		if v := optionalString(req, key); v != "" {
			q.Set(key, v)
		}
	}
	for _, c := range strings.Split(optionalString(req, people.ParamCenturies), ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.Add(people.ParamCenturies, c)
		}
	}

	res, err := s.svc.Query(ctx, people.ParseParams(q))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.NoData {
		return mcp.NewToolResultText("There are no people on the server"), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPerson(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Person(ctx, slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(p, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDatasetContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DatasetFormatContract), nil
}

func (s *Server) readDatasetFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      datasetFormatURI,
			MIMEType: "text/markdown",
			Text:     DatasetFormatContract,
		},
	}, nil
}
