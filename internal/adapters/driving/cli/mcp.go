package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose ask and retrieve as MCP tools",
	Long: `Serve the refrag tools to MCP clients.

Tools: ask (answer with tables and images), retrieve (ranked chunks).
Resources: refrag://status and the refrag://prompts/{name} templates.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. With --port it serves the streamable HTTP
transport instead.

  refrag mcp serve
  refrag mcp serve --port 8090`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	r, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if r.Answer == nil {
		return errors.New("answer service not configured")
	}

	ports := &mcp.Ports{
		Answer:    r.Answer,
		Retrieval: r.Retrieval,
		Settings:  settingsService,
	}
	if store, ok := r.Prompts.(driven.PromptStore); ok {
		ports.Prompts = store
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return fmt.Errorf("start MCP server: %w", err)
	}

	ctx := contextOrBackground(cmd.Context())
	if mcpPort == 0 {
		return server.Run(ctx)
	}
	addr := fmt.Sprintf(":%d", mcpPort)
	cmd.Printf("MCP server listening on http://localhost%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
