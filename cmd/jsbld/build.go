package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coldog/jsbld/pkg/bundler"
	"github.com/coldog/jsbld/pkg/config"
	"github.com/coldog/jsbld/pkg/util"
)

type buildFlags struct {
	entries    map[string]string
	outputPath string
	filename   string
	extensions []string
	json       bool
}

func newBuildCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build [entry]",
		Short: "Bundle the configured entries",
		Long: `Build resolves every configured entry, compiles its require() graph
and writes one bundle per entry into the output directory.

Entries come from the config file, JSBLD_ENTRY, the --entry flag or a
single positional path, which is bundled as "main".`,
		Example: `  jsbld build ./src/index.js
  jsbld build --entry app=./src/app.js --entry admin=./src/admin.js
  jsbld build -C ./web --config jsbld.yaml --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if chdir != "" {
				popd, err := util.Pushd(chdir)
				if err != nil {
					return err
				}
				defer popd()
			}

			v := viper.New()
			if err := bindBuildFlags(cmd, v, &f, args); err != nil {
				return err
			}

			stats, err := runBuild(v, cfgFile)
			if err != nil {
				return err
			}
			if f.json {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			printTable(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringToStringVarP(&f.entries, "entry", "e", nil, "entry as name=path, repeatable")
	cmd.Flags().StringVarP(&f.outputPath, "output-path", "o", "", "directory bundles are written to")
	cmd.Flags().StringVar(&f.filename, "filename", "", "bundle filename pattern, supports [name] and [hash]")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "extensions tried during resolution, in order")
	cmd.Flags().BoolVar(&f.json, "json", false, "print build stats as JSON")
	return cmd
}

func bindBuildFlags(cmd *cobra.Command, v *viper.Viper, f *buildFlags, args []string) error {
	bindings := map[string]string{
		"output.path":        "output-path",
		"output.filename":    "filename",
		"resolve.extensions": "ext",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if err := v.BindPFlag("debug", cmd.Root().PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("bind flag debug: %w", err)
	}

	switch {
	case len(args) == 1:
		v.Set("entry", args[0])
	case len(f.entries) > 0:
		entries := make(map[string]any, len(f.entries))
		for name, p := range f.entries {
			entries[name] = p
		}
		v.Set("entry", entries)
	}
	return nil
}

func runBuild(v *viper.Viper, file string) (*bundler.Stats, error) {
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	ps, err := cfg.LoadPlugins()
	if err != nil {
		return nil, err
	}

	c, err := bundler.New(opts, ps...)
	if err != nil {
		return nil, err
	}
	stats, err := c.Run()
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("entries", len(stats.Entries)).
		Int("modules", len(stats.Modules)).
		Str("output", opts.OutputPath).
		Msg("build complete")
	return stats, nil
}

func printJSON(w io.Writer, stats *bundler.Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func printTable(w io.Writer, stats *bundler.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chunk", "Entry", "Modules", "File", "Size"})

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	for _, c := range stats.Chunks {
		table.Append([]string{
			c.Name,
			c.Entry,
			strconv.Itoa(len(c.Modules)),
			c.File,
			strconv.Itoa(c.Size),
		})
	}
	table.Render()
}
