package tool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crawlmd/crawlmd/internal/config"
)

// NewServer builds an MCP server exposing the crawl tool. The server
// rejects unknown tool names before the adapter runs.
func NewServer(adapter *Adapter, version string) *server.MCPServer {
	s := server.NewMCPServer(config.AppName, version)

	crawlTool := mcp.NewTool("crawl",
		mcp.WithDescription("Crawls a website and saves its content as structured markdown to a file"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL to crawl"),
		),
		mcp.WithNumber("max_depth",
			mcp.DefaultNumber(config.DefaultMaxDepth),
			mcp.Description("Maximum crawling depth"),
		),
		mcp.WithBoolean("include_external",
			mcp.DefaultBool(config.DefaultIncludeExternal),
			mcp.Description("Whether to include external links"),
		),
		mcp.WithBoolean("verbose",
			mcp.DefaultBool(config.DefaultVerbose),
			mcp.Description("Enable verbose output"),
		),
		mcp.WithString("output_file",
			mcp.Description("Path to output file (generated if not provided)"),
		),
		mcp.WithString("strategy",
			mcp.DefaultString(config.DefaultStrategy),
			mcp.Description("Content extraction strategy (markdown or text)"),
		),
	)

	s.AddTool(crawlTool, adapter.handleCrawl)
	return s
}

// handleCrawl decodes a tool call, applying the schema defaults for
// omitted arguments, and hands it to Crawl.
func (a *Adapter) handleCrawl(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(ErrMissingURL.Error()), nil
	}

	args := Args{
		URL:             url,
		MaxDepth:        request.GetInt("max_depth", config.DefaultMaxDepth),
		IncludeExternal: request.GetBool("include_external", config.DefaultIncludeExternal),
		Verbose:         request.GetBool("verbose", config.DefaultVerbose),
		OutputFile:      request.GetString("output_file", ""),
		Strategy:        request.GetString("strategy", config.DefaultStrategy),
	}

	text, err := a.Crawl(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// ServeStdio serves MCP over standard input and output. It blocks until
// the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// ServeSSE serves MCP over Server-Sent Events on the given port. It
// blocks until the listener fails or the server is shut down.
func ServeSSE(s *server.MCPServer, port int) error {
	sse := server.NewSSEServer(s)
	return sse.Start(fmt.Sprintf("127.0.0.1:%d", port))
}
