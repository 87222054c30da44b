package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghsync/internal/appConfig"
	"ghsync/internal/counter"
	"ghsync/internal/ext"
)

// parse runs the flag parser alone and merges the result over file.
func parse(t *testing.T, file appConfig.AppConfig, args ...string) *appConfig.AppConfig {
	t.Helper()
	o := &options{}
	command := newCommand(o, func(*cobra.Command) error { return nil })
	command.SetArgs(args)
	require.NoError(t, command.Execute())
	merge(&file, o, command.Flags().Changed)
	return &file
}

func TestMerge_FlagsOverrideFile(t *testing.T) {
	file := appConfig.AppConfig{User: "me", Pattern: "tool-*", Concurrency: 8}

	config := parse(t, file, "--org", "acme", "--exclude-archived", "-vv", "-q", "-n", "--start-from", "m")

	assert.Empty(t, config.User)
	assert.Equal(t, "acme", config.Organization)
	assert.Equal(t, "tool-*", config.Pattern)
	assert.Equal(t, 8, config.Concurrency)
	assert.Equal(t, ext.NewNullableBool(false), config.IncludeArchived)
	assert.True(t, config.IncludeForks.IsZero())
	assert.Equal(t, 1, config.Verbosity)
	assert.True(t, config.DryRun)
	assert.Equal(t, "m", config.StartFrom)
}

func TestMerge_FileValuesSurviveDefaults(t *testing.T) {
	file := appConfig.AppConfig{Organization: "acme", IncludeForks: ext.NewNullableBool(true), HTTPCache: "cache"}

	config := parse(t, file)

	assert.Equal(t, "acme", config.Organization)
	assert.Equal(t, ext.NewNullableBool(true), config.IncludeForks)
	assert.Equal(t, "cache", config.HTTPCache)
	assert.Zero(t, config.Concurrency)
	assert.Equal(t, appConfig.DefaultConcurrency, config.GetConcurrency())
}

func TestMerge_AllFlags(t *testing.T) {
	config := parse(t, appConfig.AppConfig{},
		"--user", "me", "--gists", "-c", "2", "--github-token", "t0k",
		"--http-cache", "elsewhere", "--no-http-cache", "-C", "/src", "--https",
		"--rate-limit", "5", "--include-forks", "--include-archived=false", "--exclude-private")

	assert.Equal(t, "me", config.User)
	assert.True(t, config.Gists)
	assert.Equal(t, 2, config.Concurrency)
	assert.Equal(t, "t0k", config.Token)
	assert.Equal(t, "elsewhere", config.HTTPCache)
	assert.True(t, config.NoHTTPCache)
	assert.Equal(t, "/src", config.CloneDirectory)
	assert.True(t, config.UseHTTPS())
	assert.Equal(t, 5, config.RateLimitPerSecond)
	assert.Equal(t, ext.NewNullableBool(true), config.IncludeForks)
	assert.Equal(t, ext.NewNullableBool(false), config.IncludeArchived)
	assert.Equal(t, ext.NewNullableBool(false), config.IncludePrivate)
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr, nil)
	return code, stdout.String(), stderr.String()
}

func TestRun_Init(t *testing.T) {
	code, stdout, _ := run(t, "--init", "--user", "me", "--pattern", "tool-*", "--include-forks")

	assert.Equal(t, counter.ExitOK, code)
	assert.Equal(t, "Wrote .ghsync.yaml\n", stdout)
	data, err := os.ReadFile(appConfig.FileName)
	require.NoError(t, err)
	assert.Equal(t, "user: me\npattern: tool-*\nincludeForks: true\n", string(data))
}

func TestRun_InitDryRun(t *testing.T) {
	code, stdout, _ := run(t, "--init", "--user", "me", "-n")

	assert.Equal(t, counter.ExitOK, code)
	assert.Equal(t, "Did not write .ghsync.yaml because --dry-run was specified\n", stdout)
	assert.NoFileExists(t, filepath.Join(".", appConfig.FileName))
}

func TestRun_UsageErrors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no owner", nil, "specify either a user or an organization"},
		{"both owners", []string{"--user", "me", "--org", "acme"}, "specify either a user or an organization"},
		{"gists of an organization", []string{"--org", "acme", "--gists"}, "gists can only be listed for a user"},
		{"unknown flag", []string{"--frobnicate"}, "unknown flag: --frobnicate"},
		{"positional argument", []string{"--user", "me", "extra"}, "unknown command"},
		{"bad pattern", []string{"--user", "me", "--pattern", "[a"}, "pattern"},
		{"zero concurrency", []string{"--user", "me", "-c", "0"}, "concurrency must be at least 1, got 0"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)

			assert.Equal(t, counter.ExitFatal, code)
			assert.Contains(t, stderr, tt.stderr)
			assert.Contains(t, stderr, "Run 'ghsync --help' for usage.")
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := run(t, "--version")

	assert.Equal(t, counter.ExitOK, code)
	assert.Equal(t, "ghsync version dev\n", stdout)
}

func TestRun_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(appConfig.FileName, []byte("user: me\norganization: acme\n"), 0o644))
	var stdout, stderr bytes.Buffer

	code := Run(context.Background(), []string{"-n"}, &stdout, &stderr, nil)

	assert.Equal(t, counter.ExitFatal, code)
	assert.Contains(t, stderr.String(), "specify either a user or an organization")
}
