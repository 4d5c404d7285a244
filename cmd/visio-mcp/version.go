package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	visio "github.com/Therealkorris/MCP"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of visio-mcp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("visio-mcp version %s\n", strings.TrimSpace(visio.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
