package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-spatial/cobra"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/cmd/internal/register"
	"github.com/atlasdatatech/geoframe/config"
)

var (
	runOutputDir  string
	runAllowEmpty bool
)

var runCmd = &cobra.Command{
	Use:   "run <pipeline-file>",
	Short: "Run a pipeline file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPipeline(ctx, args[0])
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output-dir", "o", "", "override the output_dir setting")
	runCmd.Flags().BoolVar(&runAllowEmpty, "allow-empty", false, "let steps produce empty tables")
}

func runPipeline(ctx context.Context, path string) error {
	conf, err := config.Load(path)
	if err != nil {
		return err
	}
	if runOutputDir != "" {
		conf.Settings.OutputDir = runOutputDir
	}
	if runAllowEmpty {
		conf.Settings.AllowEmpty = true
	}
	log.Info().Str("pipeline", path).Int("sources", len(conf.Sources)).Int("steps", len(conf.Steps)).
		Int("outputs", len(conf.Outputs)).Msg("loaded")

	p, err := register.Pipeline(ctx, conf)
	if err != nil {
		return err
	}
	_, err = p.Run(ctx)
	return err
}
