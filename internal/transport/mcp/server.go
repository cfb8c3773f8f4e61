// Package mcp exposes the search operations as tools for LLM clients over
// the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/corvusec/newsdex/internal/version"

	fulltextuc "github.com/corvusec/newsdex/internal/usecase/fulltext"
	queryuc "github.com/corvusec/newsdex/internal/usecase/query"
	schemauc "github.com/corvusec/newsdex/internal/usecase/schema"
	valuesuc "github.com/corvusec/newsdex/internal/usecase/values"
)

// Server is the MCP tool server.
type Server struct {
	schema   *schemauc.Service
	values   *valuesuc.Service
	query    *queryuc.Service
	fulltext *fulltextuc.Service
	logger   *zap.Logger
	server   *mcp.Server
}

// NewServer creates an MCP server with all search tools registered.
func NewServer(
	schema *schemauc.Service,
	values *valuesuc.Service,
	query *queryuc.Service,
	fulltext *fulltextuc.Service,
	logger *zap.Logger,
) *Server {
	impl := &mcp.Implementation{
		Name:    "newsdex",
		Version: version.Version,
	}

	s := &Server{
		schema:   schema,
		values:   values,
		query:    query,
		fulltext: fulltext,
		logger:   logger,
		server:   mcp.NewServer(impl, nil),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
