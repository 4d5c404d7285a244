package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	visio "github.com/Therealkorris/MCP"
	"github.com/Therealkorris/MCP/internal/presentation/tui"
	"github.com/Therealkorris/MCP/pkg/domain"
)

var stencilsCmd = &cobra.Command{
	Use:   "stencils",
	Short: "List available stencils",
	Long: `Lists stencils known to the bridge: those open in the automation host
plus the local catalog and search-path scan. Works without a running host,
degrading to local knowledge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		bridge, err := buildBridge(cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ses := bridge.NewSession()
		defer ses.Close(context.Background())

		stencils, err := bridge.ListStencils(ctx, ses)
		if err != nil {
			return err
		}

		tui.PrintBanner(visio.Version)

		render := tui.NewRenderer()
		out, err := render(stencilsMarkdown(stencils))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func stencilsMarkdown(stencils []domain.StencilInfo) string {
	var b strings.Builder
	b.WriteString("# Stencils\n\n")
	if len(stencils) == 0 {
		b.WriteString("No stencils found.\n")
		return b.String()
	}
	b.WriteString("| Name | Type | Open | Masters |\n")
	b.WriteString("|------|------|------|--------|\n")
	for _, s := range stencils {
		open := ""
		if s.Open {
			open = "yes"
		}
		masters := ""
		if s.MastersCount > 0 {
			masters = fmt.Sprintf("%d", s.MastersCount)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", s.Name, s.Kind, open, masters)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(stencilsCmd)
}
