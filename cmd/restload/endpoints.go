package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Benjamin-Hogan/restload"
	"github.com/spf13/cobra"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the endpoints of a config's OpenAPI document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("config")
		if strings.TrimSpace(name) == "" {
			name = reg.ActiveName()
		}
		if name == "" {
			return fmt.Errorf("no config given and no active config")
		}
		cfg, ok := reg.Get(name)
		if !ok {
			return fmt.Errorf("config %q not found", name)
		}
		if strings.TrimSpace(cfg.OpenAPISpecPath) == "" {
			return fmt.Errorf("config %q has no openapi spec", name)
		}

		doc, err := restload.LoadOpenAPI(cfg.OpenAPISpecPath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s)\n", doc.Title, doc.Version, doc.SpecVersion)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, ep := range doc.Endpoints {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ep.Method, ep.Path, ep.Summary)
		}
		return w.Flush()
	},
}

func init() {
	endpointsCmd.Flags().String("config", "", "config name (default: the active config)")
}
