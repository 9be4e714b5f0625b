package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Prune unreferenced files from installed pods",
		Long:  "Removes files in the Pods sandbox that no active platform variant references. Local-override pods are never touched.",
		RunE:  runClean,
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	projectDir, pf, lf, sb, err := resolveProject()
	if err != nil {
		return err
	}

	pods, err := resolvePods(projectDir, pf, lf, sb)
	if err != nil {
		return err
	}

	cleaned := 0
	for _, pod := range pods {
		inst, err := newInstaller(pod, pf, sb, nil)
		if err != nil {
			return err
		}
		if inst.Local() {
			continue
		}

		// Pruning operates on writable trees.
		if err := inst.Unlock(); err != nil {
			return err
		}
		if err := inst.Clean(); err != nil {
			return err
		}
		if err := inst.Lock(); err != nil {
			return err
		}
		cleaned++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %d pod(s)\n", cleaned)
	return nil
}
