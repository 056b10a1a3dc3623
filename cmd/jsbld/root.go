package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Set at build time with -ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	cfgFile string
	chdir   string
	debug   bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsbld",
		Short: "Bundle CommonJS modules into self-contained scripts",
		Long: `jsbld walks the require() graph of one or more entry files and
writes one self-executing bundle per entry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(debug)
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./jsbld.yaml)")
	root.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "change to this directory before doing anything")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jsbld %s\n", Version)
			fmt.Fprintf(out, "Commit: %s\n", Commit)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		},
	}
}
