package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/article"
	"github.com/corvusec/newsdex/internal/domain/search/filter"
	"github.com/corvusec/newsdex/internal/domain/search/mode"
	"github.com/corvusec/newsdex/internal/domain/search/request"
	fulltextuc "github.com/corvusec/newsdex/internal/usecase/fulltext"
	queryuc "github.com/corvusec/newsdex/internal/usecase/query"
	schemauc "github.com/corvusec/newsdex/internal/usecase/schema"
	valuesuc "github.com/corvusec/newsdex/internal/usecase/values"
)

const workflowInstructions = `Security news search workflow:

1. Call show_searchable_fields to learn which fields exist, how they are
   grouped, and what example values look like.
2. Call get_field_values with a field name to see its exact values and
   how often each occurs. Use search_term to narrow long value lists.
   Filters match exact values for most fields, so copy values verbatim.
3. Call query_articles with filters to retrieve matching articles.
   Filters AND across fields and OR within a field. since_date
   (YYYY-MM-DD) restricts to articles on or after that date.
   cloud_platforms and products_impacted match case-insensitively;
   summary, title and article text match by substring.
4. Call search_full_text for free-text search across title, summary,
   article text and threat metadata, ranked by relevance.
5. Call get_article_details with an article_id from any result to fetch
   the complete record.

Start broad, inspect values, then narrow. An empty result usually means
a filter value does not match exactly; verify it with get_field_values.`

// WorkflowInput has no parameters.
type WorkflowInput struct{}

// WorkflowOutput carries the usage instructions.
type WorkflowOutput struct {
	Instructions string `json:"instructions"`
}

// ListFieldsInput has no parameters.
type ListFieldsInput struct{}

// FieldValuesInput selects the field to enumerate.
type FieldValuesInput struct {
	FieldName  string `json:"field_name" jsonschema:"the field whose values to enumerate"`
	SearchTerm string `json:"search_term,omitempty" jsonschema:"keep only values containing this term (case-insensitive)"`
}

// QueryInput is the structured query tool input.
type QueryInput struct {
	Filters     map[string][]string `json:"filters,omitempty" jsonschema:"field name to accepted values; AND across fields, OR within a field"`
	SinceDate   string              `json:"since_date,omitempty" jsonschema:"include only articles dated on or after this date (YYYY-MM-DD)"`
	Limit       int                 `json:"limit,omitempty" jsonschema:"maximum results (default 30, max 1000)"`
	SummaryMode *bool               `json:"summary_mode,omitempty" jsonschema:"return compact summaries instead of full articles (default true)"`
}

// DetailsInput identifies one article.
type DetailsInput struct {
	ArticleID string `json:"article_id" jsonschema:"article id from a previous result: storage path, url or title"`
}

// FullTextInput is the full-text search tool input.
type FullTextInput struct {
	Query         string              `json:"query" jsonschema:"the text to search for"`
	SearchMode    string              `json:"search_mode,omitempty" jsonschema:"exact, any_word or all_words (default exact)"`
	Filters       map[string][]string `json:"filters,omitempty" jsonschema:"structured filters applied before text matching"`
	SinceDate     string              `json:"since_date,omitempty" jsonschema:"include only articles dated on or after this date (YYYY-MM-DD)"`
	CaseSensitive bool                `json:"case_sensitive,omitempty" jsonschema:"match case exactly"`
	WholeWord     bool                `json:"whole_word,omitempty" jsonschema:"match on word boundaries only"`
	Limit         int                 `json:"limit,omitempty" jsonschema:"maximum results (default 30, max 1000)"`
	Highlight     *bool               `json:"highlight,omitempty" jsonschema:"wrap matches in snippets with <mark> tags (default true)"`
}

// DetailsOutput carries one full article record.
type DetailsOutput struct {
	Article article.Article `json:"article"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_workflow_instructions",
		Description: "Explains how to use the search tools together. Call this first.",
	}, s.handleWorkflow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "show_searchable_fields",
		Description: "Lists the searchable fields, grouped by category, with example values",
	}, s.handleListFields)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_field_values",
		Description: "Enumerates the distinct values of one field with occurrence counts",
	}, s.handleFieldValues)

	// Alias kept for clients that learned the older tool name.
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "show_field_values",
		Description: "Enumerates the distinct values of one field with occurrence counts",
	}, s.handleFieldValues)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_articles",
		Description: "Finds articles matching structured field filters, newest first",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_article_details",
		Description: "Fetches the complete record of one article by its id",
	}, s.handleDetails)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_full_text",
		Description: "Free-text search across article content, ranked by relevance",
	}, s.handleFullText)
}

func (s *Server) handleWorkflow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ WorkflowInput,
) (*mcp.CallToolResult, WorkflowOutput, error) {
	return nil, WorkflowOutput{Instructions: workflowInstructions}, nil
}

func (s *Server) handleListFields(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListFieldsInput,
) (*mcp.CallToolResult, *schemauc.Report, error) {
	report, err := s.schema.ListFields(ctx)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	return nil, report, nil
}

func (s *Server) handleFieldValues(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FieldValuesInput,
) (*mcp.CallToolResult, *valuesuc.Report, error) {
	report, err := s.values.FieldValues(ctx, input.FieldName, input.SearchTerm)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	return nil, report, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, *queryuc.Response, error) {
	summaryMode := true
	if input.SummaryMode != nil {
		summaryMode = *input.SummaryMode
	}

	q, err := request.NewQuery(filter.New(input.Filters), input.SinceDate, input.Limit, summaryMode)
	if err != nil {
		return s.toolError(err), nil, nil
	}

	resp, err := s.query.Search(ctx, q)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	return nil, resp, nil
}

func (s *Server) handleDetails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DetailsInput,
) (*mcp.CallToolResult, DetailsOutput, error) {
	a, err := s.query.Details(ctx, input.ArticleID)
	if err != nil {
		return s.toolError(err), DetailsOutput{}, nil
	}
	return nil, DetailsOutput{Article: a}, nil
}

func (s *Server) handleFullText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FullTextInput,
) (*mcp.CallToolResult, *fulltextuc.Response, error) {
	highlight := true
	if input.Highlight != nil {
		highlight = *input.Highlight
	}

	t, err := request.NewText(
		input.Query,
		mode.Mode(input.SearchMode),
		filter.New(input.Filters),
		input.SinceDate,
		input.CaseSensitive,
		input.WholeWord,
		input.Limit,
		highlight,
	)
	if err != nil {
		return s.toolError(err), nil, nil
	}

	resp, err := s.fulltext.Search(ctx, t)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	return nil, resp, nil
}

// toolError converts a domain error into an in-band tool error with a
// remediation hint, so the model can correct its call instead of failing
// the conversation.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	s.logger.Warn("tool error", zap.Error(err))

	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrFieldNotFound):
		msg += ". Call show_searchable_fields to list valid field names."
	case errors.Is(err, domain.ErrArticleNotFound):
		msg += ". Use an article_id from query_articles or search_full_text results."
	case errors.Is(err, domain.ErrInvalidSince):
		msg += ". Use the YYYY-MM-DD format, e.g. 2024-11-01."
	case errors.Is(err, domain.ErrSourceUnavailable):
		msg = "The article collection is temporarily unavailable. Retry shortly."
	}

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
