package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/podpkg/podpkg/pkg/config"
)

func newRemoveCmd() *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "remove [name...]",
		Short: "Remove installed pods",
		Long:  "Unlocks and deletes installed pod sources and drops them from Podfile.toml and the lockfile. With no arguments, prompts for a selection.",
		RunE:  runRemove,
	}

	removeCmd.Flags().Bool("all", false, "Remove every declared pod without prompting")

	return removeCmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	projectDir, pf, lf, sb, err := resolveProject()
	if err != nil {
		return err
	}

	if len(pf.Pods) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove")
		return nil
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	var selected []string
	switch {
	case all:
		selected = pf.PodNames()
	case len(args) > 0:
		for _, name := range args {
			if _, ok := pf.Pods[name]; !ok {
				return fmt.Errorf("pod %q is not declared in %s", name, config.PodfileName)
			}
		}
		selected = args
	default:
		selected, err = promptPods(pf.PodNames())
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected")
			return nil
		}
	}

	pods, err := resolvePods(projectDir, pf, lf, sb)
	if err != nil {
		return err
	}
	byName := map[string]podContext{}
	for _, pod := range pods {
		byName[pod.name] = pod
	}

	for _, name := range selected {
		pod := byName[name]

		inst, err := newInstaller(pod, pf, sb, nil)
		if err != nil {
			return err
		}

		// Restore writability before deleting; local overrides are left
		// untouched throughout.
		if err := inst.Unlock(); err != nil {
			return err
		}
		if err := sb.RemovePodDir(name); err != nil {
			return fmt.Errorf("removing pod %q: %w", name, err)
		}
		if err := sb.RemoveSpec(name); err != nil {
			return err
		}

		delete(pf.Pods, name)
		for tname, target := range pf.Targets {
			target.Pods = removeString(target.Pods, name)
			pf.Targets[tname] = target
		}
		if lf != nil {
			lf.Pods = removeLockEntry(lf.Pods, name)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed pod %q\n", name)
	}

	if err := config.SavePodfile(filepath.Join(projectDir, config.PodfileName), pf); err != nil {
		return err
	}
	if lf != nil {
		if err := config.SaveLockFile(filepath.Join(projectDir, config.LockFileName), lf); err != nil {
			return fmt.Errorf("writing lockfile: %w", err)
		}
	}

	return nil
}

// promptPods uses huh to present a multi-select of declared pods.
func promptPods(names []string) ([]string, error) {
	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(name, name)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select pods to remove").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("selection prompt failed: %w", err)
	}

	return selected, nil
}

func removeString(list []string, name string) []string {
	var out []string
	for _, s := range list {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func removeLockEntry(entries []config.PodLockEntry, name string) []config.PodLockEntry {
	var out []config.PodLockEntry
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}
