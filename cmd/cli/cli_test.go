package cli

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/axellelanca/urlalias/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.RootCmd.SetOut(&out)
	cmd.RootCmd.SetErr(&out)
	cmd.RootCmd.SetArgs(append(args, "--config-dir", dir))
	err := cmd.RootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "cli.db"))
	t.Setenv("SERVER_BASE_URL", "http://sho.rt")
	t.Setenv("LOG_LEVEL", "error")

	out, err := runCLI(t, dir, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations executed")

	out, err = runCLI(t, dir, "create-user", "admin", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "User admin created.")

	_, err = runCLI(t, dir, "create-user", "admin", "again")
	assert.Error(t, err)

	out, err = runCLI(t, dir, "create", "--url", "https://example.com/docs")
	require.NoError(t, err)
	match := regexp.MustCompile(`Code: (\S+)`).FindStringSubmatch(out)
	require.Len(t, match, 2)
	code := match[1]
	assert.Contains(t, out, "URL: http://sho.rt/"+code)

	_, err = runCLI(t, dir, "create", "--url", "not a url")
	assert.Error(t, err)

	out, err = runCLI(t, dir, "list", "--page", "1", "--per-page", "10", "--active", "")
	require.NoError(t, err)
	assert.Contains(t, out, code)
	assert.Contains(t, out, "Page 1/1, 1 alias(es)")

	out, err = runCLI(t, dir, "stats", code)
	require.NoError(t, err)
	assert.Contains(t, out, "Target: https://example.com/docs")
	assert.Contains(t, out, "State: active")
	assert.Contains(t, out, "Total clicks: 0")

	out, err = runCLI(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "http://sho.rt/"+code)

	out, err = runCLI(t, dir, "deactivate", code)
	require.NoError(t, err)
	assert.Contains(t, out, "deactivated")

	out, err = runCLI(t, dir, "list", "--page", "1", "--per-page", "10", "--active", "false")
	require.NoError(t, err)
	assert.Contains(t, out, code)

	out, err = runCLI(t, dir, "list", "--page", "1", "--per-page", "10", "--active", "no")
	require.NoError(t, err)
	assert.Contains(t, out, code)

	out, err = runCLI(t, dir, "list", "--page", "1", "--per-page", "10", "--active", "yes")
	require.NoError(t, err)
	assert.NotContains(t, out, code)
	assert.Contains(t, out, "0 alias(es)")

	_, err = runCLI(t, dir, "deactivate", "missing")
	assert.Error(t, err)

	_, err = runCLI(t, dir, "list", "--page", "1", "--per-page", "10", "--active", "sometimes")
	assert.Error(t, err)
}
