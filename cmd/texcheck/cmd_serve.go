package main

import (
	"context"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"texcheck/internal/logging"
	mcpserver "texcheck/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio for editor integration",
	Long: `Starts an MCP server over stdin/stdout exposing scan_project, run_report,
and last_report as tools, so editor agents can drive the harness directly.

The server monitors for parent process death and self-terminates when the
editor disconnects, so no orphan servers accumulate.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := mcpserver.NewServer(version)
	srv.ProjectRoot = rootFlags.dir

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting texcheck MCP server over stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
