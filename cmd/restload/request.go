package main

import (
	"encoding/json"
	"fmt"

	"github.com/Benjamin-Hogan/restload"
	"github.com/Benjamin-Hogan/restload/internal/util"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <method> <path>",
	Short: "Send a single ad-hoc request through a configured API",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := &restload.Task{Method: args[0], Path: args[1]}
		t.ConfigName, _ = cmd.Flags().GetString("config")
		t.Body, _ = cmd.Flags().GetString("body")
		t.BodyFile, _ = cmd.Flags().GetString("body-file")

		params, _ := cmd.Flags().GetStringArray("param")
		for _, p := range params {
			k, v, ok := util.SplitKeyValue(p)
			if !ok {
				return fmt.Errorf("invalid --param %q (want key=value)", p)
			}
			t.Params.Set(k, v)
		}
		headers, _ := cmd.Flags().GetStringArray("header")
		for _, h := range headers {
			k, v, ok := util.SplitKeyValue(h)
			if !ok {
				return fmt.Errorf("invalid --header %q (want key=value)", h)
			}
			t.Headers.Set(k, v)
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}

		rr, err := restload.Run(cmd.Context(), reg, &restload.Batch{Tasks: []*restload.Task{t}}, false)
		if err != nil {
			return err
		}

		res := rr.Results[0]
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("request failed")
		}
		return nil
	},
}

func init() {
	f := requestCmd.Flags()
	f.String("config", "", "config name (default: the active config)")
	f.StringArray("param", nil, "query parameter key=value (repeatable)")
	f.StringArray("header", nil, "header key=value (repeatable)")
	f.String("body", "", "raw request body")
	f.String("body-file", "", "read the request body from a file")
}
