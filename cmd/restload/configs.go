package main

import (
	"encoding/json"
	"fmt"

	"github.com/Benjamin-Hogan/restload"
	"github.com/Benjamin-Hogan/restload/internal/util"
	"github.com/spf13/cobra"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage the API config registry",
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered configs (* marks the active one)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		active := reg.ActiveName()
		for _, name := range reg.Names() {
			marker := " "
			if name == active {
				marker = "*"
			}
			cfg, _ := reg.Get(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, name, cfg.BaseURL)
		}
		return nil
	},
}

var configsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new API config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &restload.APIConfig{Name: args[0]}
		cfg.BaseURL, _ = cmd.Flags().GetString("base-url")
		cfg.OpenAPISpecPath, _ = cmd.Flags().GetString("openapi-spec")
		cfg.AuthToken, _ = cmd.Flags().GetString("token")
		cfg.Timeout, _ = cmd.Flags().GetFloat64("timeout")
		cfg.Insecure, _ = cmd.Flags().GetBool("insecure")

		headers, _ := cmd.Flags().GetStringArray("header")
		for _, h := range headers {
			k, v, ok := util.SplitKeyValue(h)
			if !ok {
				return fmt.Errorf("invalid --header %q (want key=value)", h)
			}
			if cfg.Headers == nil {
				cfg.Headers = map[string]string{}
			}
			cfg.Headers[k] = v
		}
		if spec, _ := cmd.Flags().GetString("auth"); spec != "" {
			cfg.Auth = &restload.AuthSpec{}
			if err := json.Unmarshal([]byte(spec), cfg.Auth); err != nil {
				return fmt.Errorf("invalid --auth: %w", err)
			}
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Add(cfg); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added config %q\n", cfg.Name)
		return nil
	},
}

var configsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a config from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0]); err != nil {
			return err
		}
		return reg.Save()
	},
}

var configsUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		if err := reg.Use(args[0]); err != nil {
			return err
		}
		return reg.Save()
	},
}

var configsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a config as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		cfg, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("config %q not found", args[0])
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	},
}

func init() {
	f := configsAddCmd.Flags()
	f.String("base-url", "", "base URL of the API (required)")
	f.String("openapi-spec", "", "path to an OpenAPI 3.x / Swagger 2.0 document")
	f.String("token", "", "static bearer token")
	f.String("auth", "", `auth spec JSON, e.g. '{"type":"basic","config":{"username":"u","password":"p"}}'`)
	f.StringArray("header", nil, "default header key=value (repeatable)")
	f.Float64("timeout", 0, "request timeout in seconds (0 = default)")
	f.Bool("insecure", false, "skip TLS certificate verification")
	_ = configsAddCmd.MarkFlagRequired("base-url")

	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsAddCmd)
	configsCmd.AddCommand(configsRemoveCmd)
	configsCmd.AddCommand(configsUseCmd)
	configsCmd.AddCommand(configsShowCmd)
}
