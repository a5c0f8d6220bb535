package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localrivet/clustersummary/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol server. It communicates over stdio,
so all logging goes to stderr.

Client configuration:
  {
    "mcpServers": {
      "clustersummary": {
        "command": "/path/to/clustersummary",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Start the JSON HTTP API",
	RunE:  runHTTP,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	httpCmd.Flags().String("addr", "", "listen address (default from configuration)")
	rootCmd.AddCommand(httpCmd)

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := newService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := svc.NewMCPServer()
	if err != nil {
		return err
	}
	defer srv.Stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		return nil
	}
}

func runHTTP(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	svc, err := newService(false)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := svc.NewHTTPServer(addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		return srv.Stop()
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigFilename
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.NewConfig().SaveToFile(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}
