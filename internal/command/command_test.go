package command

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute parses args with the command's flags, then runs it, returning
// what it wrote to stdout and stderr.
func execute(t *testing.T, cmd Command, args ...string) (string, string, error) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	var stdout, stderr bytes.Buffer
	fs.SetOutput(&stderr)
	cmd.SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	err := cmd.Execute(fs.Args(), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// quiet are the flags that keep a tree-running command fast and silent.
var quiet = []string{"-log-level", "error", "-scan-delay", "1ms"}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NotNil(t, r.Config())
	require.Empty(t, r.List())

	_, err := r.Get("run")
	require.EqualError(t, err, "command not found: run")

	r.RegisterBuiltins("test")
	require.Equal(t, []string{"config", "describe", "help", "init", "run", "version", "watch"}, r.List())

	cmd, err := r.Get("run")
	require.NoError(t, err)
	require.Equal(t, "run", cmd.Name())
	require.IsType(t, &RunCommand{}, cmd)

	r.Register(NewVersionCommand("other"))
	cmd, err = r.Get("version")
	require.NoError(t, err)
	stdout, _, err := execute(t, cmd)
	require.NoError(t, err)
	require.Equal(t, "arbor version other\n", stdout)
}

func TestBaseCommand(t *testing.T) {
	t.Parallel()

	c := NewBaseCommand("name", "description", "usage")
	require.Equal(t, "name", c.Name())
	require.Equal(t, "description", c.Description())
	require.Equal(t, "usage", c.Usage())

	fs := flag.NewFlagSet("name", flag.ContinueOnError)
	c.SetupFlags(fs)
	count := 0
	fs.VisitAll(func(*flag.Flag) { count++ })
	require.Zero(t, count)
}
