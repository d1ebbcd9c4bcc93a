package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReplayFixture(t *testing.T) {
	out, err := runCmd(t, "../../internal/scenefile/testdata/stack.toml")
	require.NoError(t, err)

	want := []string{
		"0\tclick\tL3\t50,50",
		"2\tclick\tL2\t50,50",
		"3\tpointerenter\tbutton\t215,15",
		"4\tclick\tpanel\t205,5",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestReplayHoverTransitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hover.toml")
	scene := `
[[node]]
name = "a"
rect = [0, 0, 10, 10]

[[node]]
name = "b"
x = 5
rect = [0, 0, 10, 10]

[[step]]
type = "pointermove"
x = 2
y = 2

[[step]]
type = "pointermove"
x = 7
y = 2

[[step]]
type = "bringToFront"
node = "a"

[[step]]
type = "pointermove"
x = 7
y = 3
`
	require.NoError(t, os.WriteFile(path, []byte(scene), 0o644))

	out, err := runCmd(t, path)
	require.NoError(t, err)

	want := []string{
		"0\tpointerenter\ta\t2,2",
		"1\tpointerleave\ta\t7,2",
		"1\tpointerenter\tb\t7,2",
		"3\tpointerleave\tb\t7,3",
		"3\tpointerenter\ta\t7,3",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestReplayErrors(t *testing.T) {
	_, err := runCmd(t)
	assert.Error(t, err, "scene path is required")

	_, err = runCmd(t, filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[step]]\ntype = \"remove\"\nnode = \"nope\"\n"), 0o644))
	_, err = runCmd(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
}
