package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/project"
	"github.com/podpkg/podpkg/pkg/sandbox"
	"github.com/podpkg/podpkg/pkg/spec"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new podpkg project",
		Long:  "Creates a Podfile.toml manifest and configures .gitignore entries.",
		RunE:  runInit,
		// init does not need dev config resolution; skip the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	name := project.InferName(wd)

	platforms, err := promptPlatforms()
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		platforms = []spec.Platform{spec.PlatformIOS}
	}

	if err := project.Init(wd, name, platforms); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", project.ManifestFile)

	gitignoreEntries := []string{config.LocalConfigFile, sandbox.DefaultRoot + "/"}
	added, err := project.EnsureGitignore(wd, gitignoreEntries)
	if err != nil {
		return err
	}
	for _, entry := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
	}

	return nil
}

// promptPlatforms uses huh to present a multi-select of target platforms.
func promptPlatforms() ([]spec.Platform, error) {
	all := []spec.Platform{spec.PlatformIOS, spec.PlatformOSX, spec.PlatformTVOS, spec.PlatformWatchOS}
	options := make([]huh.Option[spec.Platform], len(all))
	for i, p := range all {
		options[i] = huh.NewOption(string(p), p)
	}

	var selected []spec.Platform
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[spec.Platform]().
				Title("Select target platforms").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}
