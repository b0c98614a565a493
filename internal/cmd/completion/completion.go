// Package completion generates, installs and removes shell completion
// scripts, and provides value completions for common flags.
package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowerShell = "powershell"
)

// Shells returns every shell a script can be generated for.
func Shells() []string {
	return []string{ShellBash, ShellZsh, ShellFish, ShellPowerShell}
}

// InstallableShells returns the shells with a well known completion directory.
func InstallableShells() []string {
	return []string{ShellBash, ShellZsh, ShellFish}
}

// Generate writes the completion script of root for shell to w.
func Generate(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case ShellBash:
		return root.GenBashCompletionV2(w, true)
	case ShellZsh:
		return root.GenZshCompletion(w)
	case ShellFish:
		return root.GenFishCompletion(w, true)
	case ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return unsupported(shell)
	}
}

// Path returns where the completion script for shell is installed. A
// Homebrew prefix is preferred, then the user's home directory.
func Path(shell string) (string, error) {
	name, ok := fileNames()[shell]
	if !ok {
		return "", unsupported(shell)
	}

	if prefix := brewPrefix(); prefix != "" {
		switch shell {
		case ShellBash:
			return filepath.Join(prefix, "etc", "bash_completion.d", name), nil
		case ShellZsh:
			return filepath.Join(prefix, "share", "zsh", "site-functions", name), nil
		case ShellFish:
			return filepath.Join(prefix, "share", "fish", "vendor_completions.d", name), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapIO("resolve", "home directory", err)
	}
	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bash_completion.d", name), nil
	case ShellZsh:
		return filepath.Join(home, ".zsh", "completions", name), nil
	default:
		return filepath.Join(home, ".config", "fish", "completions", name), nil
	}
}

// Install writes the script for shell to its Path and returns that path.
func Install(root *cobra.Command, shell string) (string, error) {
	path, err := Path(shell)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(path), err)
	}

	// #nosec G304 -- path is built by Path from fixed components
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return "", errors.WrapIO("create", path, err)
	}
	if err := Generate(root, f, shell); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}

// Uninstall removes the script installed by Install. removed is false when
// no script was present.
func Uninstall(shell string) (path string, removed bool, err error) {
	path, err = Path(shell)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return path, false, nil
	}
	if err != nil {
		return path, false, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return path, false, errors.NewValidationError("path", path, "is a directory")
	}
	if err := os.Remove(path); err != nil {
		return path, false, errors.WrapIO("remove", path, err)
	}
	return path, true, nil
}

// Values completes a flag from a fixed list, matching the typed prefix.
func Values(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(values))
		for _, v := range values {
			if strings.HasPrefix(v, strings.ToLower(toComplete)) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// RegisterFlag attaches Values completion to the named flag of cmd. Flags
// that do not exist are skipped.
func RegisterFlag(cmd *cobra.Command, name string, values ...string) {
	if cmd.Flags().Lookup(name) == nil && cmd.PersistentFlags().Lookup(name) == nil {
		return
	}
	_ = cmd.RegisterFlagCompletionFunc(name, Values(values...))
}

func fileNames() map[string]string {
	return map[string]string{
		ShellBash: constants.AppName,
		ShellZsh:  "_" + constants.AppName,
		ShellFish: constants.AppName + ".fish",
	}
}

func brewPrefix() string {
	if prefix := os.Getenv("HOMEBREW_PREFIX"); prefix != "" {
		return prefix
	}
	for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
		if _, err := os.Stat(filepath.Join(prefix, "bin", "brew")); err == nil {
			return prefix
		}
	}
	return ""
}

func unsupported(shell string) error {
	return errors.NewValidationError("shell", shell, fmt.Sprintf("must be one of: %s", strings.Join(Shells(), ", ")))
}
