package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a fresh command tree, capturing stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PANTRYSYNC_DB_PATH", filepath.Join(dir, "state.db"))
	t.Setenv("PANTRYSYNC_REMOTE_BACKEND", "fs")
	t.Setenv("PANTRYSYNC_REMOTE_PATH", filepath.Join(dir, "remote"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestInitCategoryStatusFlow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "registry initialized")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "state:        synced")

	out, err = run(t, "category", "add", "Vegetables")
	require.NoError(t, err)
	assert.Contains(t, out, "created category Vegetables")

	out, err = run(t, "status", "--changes")
	require.NoError(t, err)
	assert.Contains(t, out, "state:        dirty")
	assert.Contains(t, out, "pending:      1")
	assert.Contains(t, out, "create\tcategory")

	out, err = run(t, "push")
	require.NoError(t, err)
	assert.Contains(t, out, "pushed local registry")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "state:        synced")
}

func TestIngredientRequiresCategoryFlag(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "ingredient", "add", "Carrot")
	assert.Error(t, err)
}

func TestUnknownRemoteBackend(t *testing.T) {
	setupEnv(t)
	t.Setenv("PANTRYSYNC_REMOTE_BACKEND", "carrier-pigeon")

	_, err := run(t, "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown remote backend")
}
