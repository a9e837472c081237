package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	// flags keep their values between executions
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() != "stringSlice" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	*checkIfaces = nil
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func TestCheckSafeInterfaces(t *testing.T) {
	out, err := runCmd(t, CheckCmd, "testdata/shapes.yaml", "--color", "never", "-v", "-i", "Named,Shape")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   Named (1 dispatchable, 0 excluded)")
	assert.Contains(t, out, "ok   Shape (2 dispatchable, 1 excluded)")
	assert.Contains(t, out, "[1] Named::fn name(&self) -> String")
}

func TestCheckUnsafeInterfaceFails(t *testing.T) {
	out, err := runCmd(t, CheckCmd, "testdata/shapes.yaml", "--color", "never", "-i", "Factory")
	assert.EqualError(t, err, "1 of 1 interfaces cannot be used as dynamic handles")
	assert.Contains(t, out, "error: interface 'Factory' cannot be used as a dynamic handle")
	assert.Contains(t, out, "(E004) missing receiver `create`")
	assert.Contains(t, out, "fn create() -> Self where Self: Sized")
}

func TestCheckBadArguments(t *testing.T) {
	_, err := runCmd(t, CheckCmd, "testdata/missing.yaml")
	assert.Error(t, err)

	_, err = runCmd(t, CheckCmd, "testdata/shapes.yaml", "--color", "sometimes", "-i", "Named")
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	out, err := runCmd(t, ExplainCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "E001  sized self bound")
	assert.Contains(t, out, "E006  Self in signature")

	out, err = runCmd(t, ExplainCmd, "e5")
	require.NoError(t, err)
	assert.Contains(t, out, "E005: generic method")
	assert.Contains(t, out, "Lifetime")

	_, err = runCmd(t, ExplainCmd, "E042")
	assert.Error(t, err)
}
