package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/geoframe/config"
	"github.com/atlasdatatech/geoframe/server"
)

var (
	serveDir  string
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rendered artifacts for preview",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.ListenAndServe(ctx, serveAddr, serveDir)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDir, "dir", config.DefaultOutputDir, "directory of rendered artifacts")
	serveCmd.Flags().StringVar(&serveAddr, "addr", server.DefaultAddress, "address to listen on")
}
