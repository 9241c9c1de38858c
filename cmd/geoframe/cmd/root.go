// Package cmd holds the geoframe command line.
package cmd

import (
	"github.com/go-spatial/cobra"
	"github.com/rs/zerolog/log"

	gflog "github.com/atlasdatatech/geoframe/internal/log"

	// sources and sinks
	_ "github.com/atlasdatatech/geoframe/provider/csv"
	_ "github.com/atlasdatatech/geoframe/provider/debug"
	_ "github.com/atlasdatatech/geoframe/provider/geojson"
	_ "github.com/atlasdatatech/geoframe/provider/gpkg"
	_ "github.com/atlasdatatech/geoframe/provider/postgis"

	// renderers
	_ "github.com/atlasdatatech/geoframe/render/chart"
	_ "github.com/atlasdatatech/geoframe/render/gg"
	_ "github.com/atlasdatatech/geoframe/render/static"
	_ "github.com/atlasdatatech/geoframe/render/svgmap"
	_ "github.com/atlasdatatech/geoframe/render/webmap"
)

// Version is set at build time.
var Version = "version not set"

var logger gflog.Logger

// RootCmd is the geoframe command.
var RootCmd = &cobra.Command{
	Use:   "geoframe",
	Short: "geoframe runs vector data pipelines",
	Long: `geoframe reads spatial tables, transforms and joins them, and renders
maps and charts, as described by a TOML or YAML pipeline file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logger.Level, "log-level", "info", "log level: trace, debug, info, warn or error")
	RootCmd.PersistentFlags().StringVar(&logger.Format, "log-format", "console", "log format: console or json")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(inspectCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the command line and logs the error, if any.
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		log.Error().Err(err).Msg("geoframe failed")
	}
	return err
}
