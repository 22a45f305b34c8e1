package cmd

import (
	"context"
	"os"
	"os/signal"

	"digispark-uploader/internal/config"
	"digispark-uploader/internal/download"
	"digispark-uploader/internal/logger"
	"digispark-uploader/internal/progress"
	"digispark-uploader/internal/sketch"
	"digispark-uploader/internal/toolchain"
	"digispark-uploader/internal/uploader"

	"github.com/spf13/cobra"
)

// debug enables cyan debug logging (--debug).
var debug bool

// configPath is the YAML config file (--config / -c).
var configPath string

// cfg is loaded once per invocation before any subcommand runs.
var cfg config.Config

var (
	selectNumber int
	sketchPath   string
)

// rootCmd runs the whole flow: verify the toolchain, fetch sketches,
// ask for one, compile and upload it.
var rootCmd = &cobra.Command{
	Use:           "digispark-uploader",
	Short:         "Compile and upload example sketches to a Digispark",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(debug)
		var err error
		cfg, err = config.LoadConfig(configPath, cmd.Flags().Changed("config"))
		return err
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		var pick *int
		if cmd.Flags().Changed("select") {
			pick = &selectNumber
		}
		runner := newRunner()
		fetcher := newFetcher()
		p := &uploader.Pipeline{
			Toolchain: newInstaller(runner, fetcher),
			Sketches:  sketch.NewBundle(cfg, fetcher, progress.NewBar(os.Stderr, progress.Items)),
			Uploader:  uploader.New(cfg, runner),
			Extension: cfg.Sketches.Extension,
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
			Select:    pick,
			Sketch:    sketchPath,
		}
		return p.Run(cmd.Context())
	},
}

func newRunner() toolchain.Runner {
	return toolchain.ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func newFetcher() *download.Downloader {
	return download.New(cfg.Download.Timeout, progress.NewBar(os.Stderr, progress.Bytes))
}

func newInstaller(runner toolchain.Runner, fetcher toolchain.Fetcher) *toolchain.Installer {
	return toolchain.NewInstaller(cfg, runner, fetcher, progress.NewBar(os.Stderr, progress.Items))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Path to configuration file")
	rootCmd.Flags().IntVar(&selectNumber, "select", 0, "Sketch number to upload without prompting")
	rootCmd.Flags().StringVar(&sketchPath, "sketch", "", "Upload this sketch file instead of fetching the bundle")
	rootCmd.MarkFlagsMutuallyExclusive("select", "sketch")

	rootCmd.AddCommand(toolchainCmd)
	rootCmd.AddCommand(sketchesCmd)
}

// Execute runs the CLI. Ctrl-C cancels the running step.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
