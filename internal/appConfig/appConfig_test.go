package appConfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghsync/internal/ext"
	"ghsync/internal/github"
)

func TestFindConfigFile(t *testing.T) {
	dir, home := t.TempDir(), t.TempDir()
	assert.Equal(t, "", FindConfigFile(dir, home))

	homeConfig := filepath.Join(home, FileName)
	require.NoError(t, os.WriteFile(homeConfig, []byte("user: me\n"), 0o644))
	assert.Equal(t, homeConfig, FindConfigFile(dir, home))

	dirConfig := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(dirConfig, []byte("user: me\n"), 0o644))
	assert.Equal(t, dirConfig, FindConfigFile(dir, home))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
organization: acme
pattern: "svc-*"
includeArchived: true
includePrivate: false
concurrency: 8
protocol: https
`), 0o644))

	config, err := LoadConfig(path)

	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, github.Owner{Organization: "acme"}, config.Owner())
	assert.Equal(t, github.Filter{Pattern: "svc-*", IncludeArchived: true, IncludeDisabled: true}, config.Filter())
	assert.Equal(t, 8, config.GetConcurrency())
	assert.True(t, config.UseHTTPS())
	assert.Nil(t, config.IncludeForks.Value)
}

func TestLoadConfig_Empty(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, config.GetConcurrency())
	assert.Equal(t, github.DefaultFilter(), config.Filter())
	assert.Equal(t, ".httpcache.sqlite", config.GetHTTPCachePath())
	config.NoHTTPCache = true
	assert.Equal(t, "", config.GetHTTPCachePath())
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("githubUser: me\n"), 0o644))

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	config := &AppConfig{
		User:         "me",
		Pattern:      "tool-*",
		IncludeForks: ext.NewNullableBool(true),
		Token:        "never-written",
		DryRun:       true,
	}

	require.NoError(t, config.WriteConfig(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user: me\npattern: tool-*\nincludeForks: true\n", string(data))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "me", loaded.User)
	assert.True(t, loaded.Filter().IncludeForks)
	assert.Empty(t, loaded.Token)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&AppConfig{}).Validate(), github.ErrInvalidOwner)
	assert.ErrorIs(t, (&AppConfig{Organization: "o", Gists: true}).Validate(), github.ErrGistsNeedUser)
	assert.Error(t, (&AppConfig{User: "u", Protocol: "ftp"}).Validate())
	assert.Error(t, (&AppConfig{User: "u", Pattern: "[x"}).Validate())
	assert.NoError(t, (&AppConfig{User: "u", Gists: true}).Validate())
	assert.EqualError(t, (&AppConfig{User: "u", Concurrency: -1}).Validate(), "concurrency must not be negative, leave it out for the default")
	assert.NoError(t, (&AppConfig{User: "u", Concurrency: 0}).Validate())
}

func TestResolveToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")
	t.Setenv("OTHER_TOKEN", "from-other")

	assert.Equal(t, "from-env", (&AppConfig{}).ResolveToken())
	assert.Equal(t, "from-other", (&AppConfig{TokenEnvVar: "OTHER_TOKEN"}).ResolveToken())
	assert.Equal(t, "explicit", (&AppConfig{Token: "explicit", TokenEnvVar: "OTHER_TOKEN"}).ResolveToken())
}
