package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logdam/internal/config"
	"logdam/internal/parse"
	"logdam/internal/ui"
	"logdam/internal/util/logx"
	"logdam/internal/version"
)

var cfgFile string

// runUI is swapped in tests.
var runUI = ui.Run

// NewRootCommand creates the root command
func NewRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logdam [flags]",
		Short: "Live tabular view of line-oriented streams",
		Long: `logdam reads a byte stream (file, stdin or a generated demo feed), splits it
into records and fields, and keeps one row per key, highlighting cells as
they are added and changed.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			logx.Infof("starting logdam %s: %s", version.String(), cfg.String())
			return runUI(ctx, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	config.BindFlags(rootCmd.Flags())

	rootCmd.AddCommand(newStrategiesCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List parsing strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeStrategies(cmd.OutOrStdout(), parse.DefaultOptions())
		},
	}
}

func writeStrategies(w io.Writer, opt parse.Options) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, label := range parse.Labels() {
		pc, err := parse.New(label, nil, opt)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, strings.TrimSpace(strings.TrimPrefix(parse.Describe(pc), label)))
	}
	return tw.Flush()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logdam %s\n", version.String())
			fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", version.Runtime())
		},
	}
}
