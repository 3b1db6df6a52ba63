package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/Benjamin-Hogan/restload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API for configs, requests, runs and history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}

		logger := restload.GetLogger().WithComponent("cli")
		var st restload.Store
		if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
			st, err = openStore()
			if err != nil {
				logger.Warn("history store disabled", "error", err)
				st = nil
			} else {
				defer func() { _ = st.Close() }()
			}
		}

		srv := restload.NewServer(restload.ServerOptions{
			Registry: reg,
			Store:    st,
			Version:  version,
			Debug:    strings.EqualFold(viper.GetString("log_level"), "debug"),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addr, _ := cmd.Flags().GetString("addr")
		return srv.Run(ctx, addr)
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", ":8080", "listen address")
	f.Bool("no-store", false, "serve without a run-history store")
}
