package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newsradar",
		Short: "Score and deduplicate news into POST/WATCH/DROP decisions",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(runCmd())
	root.AddCommand(collectCmd())
	root.AddCommand(decisionsCmd())
	root.AddCommand(clustersCmd())

	return root
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full scoring batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.window, "window", "", "scan window (e.g. 6h, 360m)")
	cmd.Flags().BoolVar(&opts.mockSocial, "mock-social", false, "use deterministic signal stubs")
	cmd.Flags().BoolVar(&opts.noBrandFit, "no-brand-fit", false, "score without the brand profile")
	cmd.Flags().Float64Var(&opts.postCutoff, "post-cutoff", -1, "POST decision cutoff (default: from config)")
	cmd.Flags().Float64Var(&opts.watchCutoff, "watch-cutoff", -1, "WATCH decision cutoff (default: from config)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory for the batch tables")
	cmd.Flags().StringVar(&opts.every, "every", "", "repeat the batch on an interval (e.g. 6h)")
	cmd.Flags().IntVar(&opts.top, "top", 15, "clusters to print after the run")
	return cmd
}

func collectCmd() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Ingest feeds into the store without scoring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), window)
		},
	}

	cmd.Flags().StringVar(&window, "window", "", "scan window (e.g. 6h, 360m)")
	return cmd
}

func decisionsCmd() *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show decisions from the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecisions(cmd.Context(), jsonOutput, limit)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows to show")
	return cmd
}

func clustersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clusters",
		Short: "Show clusters from the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClusters(cmd.Context())
		},
	}
}
