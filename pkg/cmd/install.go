package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/podpkg/podpkg/pkg/config"
	"github.com/podpkg/podpkg/pkg/installer"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install pods from Podfile.toml",
		Long:  "Fetches every pod declared in Podfile.toml into the Pods sandbox, prunes unreferenced files, and write-protects the installed sources.",
		RunE:  runInstall,
	}

	installCmd.Flags().Bool("save", false, "Persist the resolved verbose/no-cache settings to "+config.LocalConfigFile)
	installCmd.Flags().Bool("save-global", false, "Persist the resolved verbose/no-cache settings to ~/.podpkg/config.toml")

	return installCmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	projectDir, pf, existingLock, sb, err := resolveProject()
	if err != nil {
		return err
	}

	pods, err := resolvePods(projectDir, pf, existingLock, sb)
	if err != nil {
		return err
	}

	warner := installer.WarnerFunc(func(msg string) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
	})

	lf := &config.LockFile{Version: 1}
	for _, pod := range pods {
		if DevCfg.Verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Installing %s\n", pod.name)
		}

		inst, err := newInstaller(pod, pf, sb, warner)
		if err != nil {
			return err
		}

		// External direct references keep their specification cached in
		// the sandbox; install finalization decides whether it survives.
		if pod.decl.ExternalSource() {
			if err := sb.StoreSpec(inst.Root()); err != nil {
				return err
			}
		}

		// Installed trees are write-protected from the previous run.
		if err := inst.Unlock(); err != nil {
			return err
		}
		if err := inst.Install(cmd.Context()); err != nil {
			return err
		}
		if err := inst.Clean(); err != nil {
			return err
		}
		if err := inst.Lock(); err != nil {
			return err
		}

		entry := config.PodLockEntry{Name: pod.name, Source: pod.decl.Source()}
		if checkout, ok := sb.CheckoutSource(pod.name); ok {
			c := checkout
			entry.Checkout = &c
		}
		if !inst.Local() {
			integrity, err := sb.IntegrityHash(pod.name)
			if err != nil {
				return fmt.Errorf("hashing pod %q: %w", pod.name, err)
			}
			entry.Integrity = integrity
		}
		lf.Pods = append(lf.Pods, entry)
	}

	if err := sb.SaveManifest(); err != nil {
		return err
	}
	if err := config.SaveLockFile(filepath.Join(projectDir, config.LockFileName), lf); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}

	if err := saveDevConfig(cmd, projectDir); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %d pod(s)\n", len(lf.Pods))
	return nil
}

// saveDevConfig persists the settings this run resolved, so future installs
// pick them up without flags.
func saveDevConfig(cmd *cobra.Command, projectDir string) error {
	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := config.WriteLocalDevConfig(projectDir, DevCfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved settings to %s\n", config.LocalConfigFile)
	}
	if saveGlobal, _ := cmd.Flags().GetBool("save-global"); saveGlobal {
		if err := config.WriteGlobalDevConfig(DevCfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved settings to the global config")
	}
	return nil
}
