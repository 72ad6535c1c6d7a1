// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the colour engine to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sunc/internal/evalservice"
	"github.com/starford/sunc/internal/models"
)

const grammarURI = "sunc://expression-grammar"

// Server wraps the MCP server with colour algebra tools.
type Server struct {
	mcp *server.MCPServer
	svc *evalservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *evalservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"sunc",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	modeOpt := mcp.WithString("mode",
		mcp.Description("full (exact in NC) or lc (leading colour); defaults to the server setting"),
		mcp.Enum(string(models.ModeFull), string(models.ModeLC)),
	)

	s.mcp.AddTool(mcp.NewTool("evaluate_colour",
		mcp.WithDescription("Reduce a colour expression such as \"t[1,2,3] t[1,3,2]\" to a polynomial "+
			"in NC, TR, CF and CA and its numeric value at NC=3. Read the grammar via "+
			"get_expression_grammar or the "+grammarURI+" resource first."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Sum of tensor products")),
		modeOpt,
	), s.evaluateColour)

	s.mcp.AddTool(mcp.NewTool("scalar_product",
		mcp.WithDescription("Compute <lhs|rhs>: the hermitian conjugate of lhs contracted with rhs."),
		mcp.WithString("lhs", mcp.Required(), mcp.Description("Bra amplitude")),
		mcp.WithString("rhs", mcp.Required(), mcp.Description("Ket amplitude")),
		modeOpt,
	), s.scalarProduct)

	s.mcp.AddTool(mcp.NewTool("multiply",
		mcp.WithDescription("Evaluate the product lhs*rhs. Indices shared by both sides contract."),
		mcp.WithString("lhs", mcp.Required(), mcp.Description("Left amplitude")),
		mcp.WithString("rhs", mcp.Required(), mcp.Description("Right amplitude")),
		modeOpt,
	), s.multiply)

	s.mcp.AddTool(mcp.NewTool("hermitian_conjugate",
		mcp.WithDescription("Return the hermitian conjugate of an amplitude without evaluating it."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Amplitude to conjugate")),
	), s.hermitianConjugate)

	s.mcp.AddTool(mcp.NewTool("colour_matrix",
		mcp.WithDescription("Compute the colour matrix C_ij = <b_i|b_j> of a basis."),
		mcp.WithString("basis", mcp.Required(), mcp.Description("Basis vectors, one amplitude per line")),
		modeOpt,
	), s.colourMatrix)

	s.mcp.AddTool(mcp.NewTool("list_worksheets",
		mcp.WithDescription("List the worksheets in the workspace with their titles and errors."),
	), s.listWorksheets)

	s.mcp.AddTool(mcp.NewTool("read_worksheet",
		mcp.WithDescription("Read a worksheet with its evaluated colour matrix and expressions."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the worksheet (e.g. processes/gg.yaml)")),
	), s.readWorksheet)

	s.mcp.AddTool(mcp.NewTool("create_worksheet",
		mcp.WithDescription("Create a YAML worksheet and evaluate it. The content is parsed before "+
			"anything is written."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the worksheet (must end with .yaml)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Worksheet YAML following the expression grammar")),
	), s.createWorksheet)

	s.mcp.AddTool(mcp.NewTool("get_expression_grammar",
		mcp.WithDescription("Returns the colour expression and worksheet grammar."),
	), s.getExpressionGrammar)

	s.mcp.AddResource(
		mcp.NewResource(grammarURI, "Expression Grammar",
			mcp.WithResourceDescription("Syntax of colour expressions and YAML worksheets."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGrammarResource,
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

func mode(req mcp.CallToolRequest) models.Mode {
	if m, err := req.RequireString("mode"); err == nil {
		return models.Mode(m)
	}
	return ""
}

func (s *Server) evaluateColour(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := s.svc.Evaluate(ctx, expr, mode(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ev)
}

func (s *Server) scalarProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lhs, err := req.RequireString("lhs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rhs, err := req.RequireString("rhs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := s.svc.ScalarProduct(ctx, lhs, rhs, mode(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ev)
}

func (s *Server) multiply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lhs, err := req.RequireString("lhs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rhs, err := req.RequireString("rhs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := s.svc.Multiply(ctx, lhs, rhs, mode(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ev)
}

func (s *Server) hermitianConjugate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := req.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Conjugate(ctx, expr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Conjugate), nil
}

func (s *Server) colourMatrix(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("basis")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var basis []string
	for line := range strings.Lines(raw) {
		if line = strings.TrimSpace(line); line != "" {
			basis = append(basis, line)
		}
	}
	m, err := s.svc.ColourMatrix(ctx, basis, mode(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m)
}

func (s *Server) listWorksheets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListWorksheets(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no worksheets found"), nil
	}
	var b strings.Builder
	for _, w := range items {
		fmt.Fprintf(&b, "%s\t%s", w.Path, w.Title)
		if w.Error != "" {
			fmt.Fprintf(&b, "\terror: %s", w.Error)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

func (s *Server) readWorksheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w, err := s.svc.GetWorksheet(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", path, err)), nil
	}
	return jsonResult(w)
}

func (s *Server) createWorksheet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateWorksheet(ctx, path, []byte(content)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getExpressionGrammar(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ExpressionGrammar), nil
}

func (s *Server) readGrammarResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      grammarURI,
			MIMEType: "text/markdown",
			Text:     ExpressionGrammar,
		},
	}, nil
}
