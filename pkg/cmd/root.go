package cmd

import (
	"os"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagNoCache bool

	// DevCfg holds the resolved developer configuration, available to all
	// subcommands after PersistentPreRunE completes.
	DevCfg *config.DevConfig
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "podpkg",
		Short: "Pod dependency manager",
		Long:  "podpkg installs the pod dependencies declared in Podfile.toml into a project-local Pods sandbox.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDevConfig(
				flagVerbose, cmd.Flags().Changed("verbose"),
				flagNoCache, cmd.Flags().Changed("no-cache"),
			)
			if err != nil {
				return err
			}
			DevCfg = cfg
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "print per-pod progress")
	root.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "never reuse previously fetched sources")

	root.AddCommand(newInitCmd())
	root.AddCommand(newInstallCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newCleanCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
