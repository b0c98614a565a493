package completion

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	root := &cobra.Command{Use: "mavroute", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewCommand())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"completion"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCompletion_Generate(t *testing.T) {
	out, err := execute(t, "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "bash completion V2 for mavroute")

	out, err = execute(t, "powershell")
	require.NoError(t, err)
	assert.Contains(t, out, "Register-ArgumentCompleter")
}

func TestCompletion_InstallUninstall(t *testing.T) {
	t.Setenv("HOMEBREW_PREFIX", t.TempDir())

	out, err := execute(t, "install", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ zsh completions installed to ")

	out, err = execute(t, "uninstall", "zsh", "fish")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ removed zsh completions from ")
	assert.Contains(t, out, "ℹ️ no fish completions found at ")
}

func TestCompletion_InvalidShell(t *testing.T) {
	_, err := execute(t, "install", "tcsh")
	require.Error(t, err)
}
