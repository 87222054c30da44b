package appConfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"ghsync/internal/ext"
	"ghsync/internal/github"
)

const (
	FileName           = ".ghsync.yaml"
	DefaultConcurrency = 4
	DefaultTokenEnvVar = "GITHUB_TOKEN"
	DefaultHTTPCache   = ".httpcache"
)

// AppConfig holds the settings of a run. The yaml tagged part is what .ghsync.yaml
// may contain; the rest only comes from the command line.
type AppConfig struct {
	User               string           `yaml:"user,omitempty"`
	Organization       string           `yaml:"organization,omitempty"`
	Gists              bool             `yaml:"gists,omitempty"`
	Pattern            string           `yaml:"pattern,omitempty"`
	TokenEnvVar        string           `yaml:"tokenEnvVar,omitempty"` // The environment variable holding the GitHub token
	Token              string           `yaml:"token,omitempty"`
	IncludeForks       ext.NullableBool `yaml:"includeForks,omitempty"`
	IncludeArchived    ext.NullableBool `yaml:"includeArchived,omitempty"`
	IncludePrivate     ext.NullableBool `yaml:"includePrivate,omitempty"`
	IncludeDisabled    ext.NullableBool `yaml:"includeDisabled,omitempty"`
	Concurrency        int              `yaml:"concurrency,omitempty"`
	CloneDirectory     string           `yaml:"cloneDirectory,omitempty"` // Where to clone repositories, default is the working directory
	Protocol           string           `yaml:"protocol,omitempty"`       // ssh or https
	HTTPCache          string           `yaml:"httpCache,omitempty"`
	RateLimitPerSecond int              `yaml:"rateLimitPerSecond,omitempty"` // Dispatches per second, unlimited when 0
	APIURL             string           `yaml:"apiURL,omitempty"`

	NoHTTPCache bool   `yaml:"-"`
	DryRun      bool   `yaml:"-"`
	Verbosity   int    `yaml:"-"`
	StartFrom   string `yaml:"-"`
}

// FindConfigFile returns the config file in dir, or else in home, or "" if neither has one.
func FindConfigFile(dir, home string) string {
	for _, candidate := range []string{dir, home} {
		if candidate == "" {
			continue
		}
		path := filepath.Join(candidate, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfig reads path; an empty path yields an empty configuration.
func LoadConfig(path string) (*AppConfig, error) {
	config := &AppConfig{}
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", path, err)
	}
	return config, nil
}

// WriteConfig stores the owner and filter settings, the ones worth remembering for
// the next run in the same directory.
func (c *AppConfig) WriteConfig(path string) error {
	persisted := AppConfig{
		User:            c.User,
		Organization:    c.Organization,
		Gists:           c.Gists,
		Pattern:         c.Pattern,
		TokenEnvVar:     c.TokenEnvVar,
		IncludeForks:    c.IncludeForks,
		IncludeArchived: c.IncludeArchived,
		IncludePrivate:  c.IncludePrivate,
		IncludeDisabled: c.IncludeDisabled,
		CloneDirectory:  c.CloneDirectory,
		Protocol:        c.Protocol,
		APIURL:          c.APIURL,
	}
	data, err := yaml.Marshal(&persisted)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *AppConfig) Validate() error {
	if err := c.Owner().Validate(c.Kind()); err != nil {
		return err
	}
	if err := c.Filter().Validate(); err != nil {
		return err
	}
	switch c.Protocol {
	case "", "ssh", "https":
	default:
		return fmt.Errorf("unknown protocol %q, expected ssh or https", c.Protocol)
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must not be negative, leave it out for the default")
	}
	return nil
}

func (c *AppConfig) Owner() github.Owner {
	return github.Owner{User: c.User, Organization: c.Organization}
}

func (c *AppConfig) Kind() github.ResourceKind {
	if c.Gists {
		return github.Gists
	}
	return github.Repositories
}

func (c *AppConfig) Filter() github.Filter {
	defaults := github.DefaultFilter()
	return github.Filter{
		Pattern:         c.Pattern,
		IncludeForks:    c.IncludeForks.Val(defaults.IncludeForks),
		IncludeArchived: c.IncludeArchived.Val(defaults.IncludeArchived),
		IncludePrivate:  c.IncludePrivate.Val(defaults.IncludePrivate),
		IncludeDisabled: c.IncludeDisabled.Val(defaults.IncludeDisabled),
	}
}

// ResolveToken prefers an explicit token over the configured environment variable.
func (c *AppConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(ext.DefaultValue(c.TokenEnvVar, DefaultTokenEnvVar))
}

func (c *AppConfig) GetConcurrency() int {
	return max(ext.DefaultValue(c.Concurrency, DefaultConcurrency), 1)
}

func (c *AppConfig) GetCloneDirectory() string {
	return ext.ExpandTilde(ext.DefaultValue(c.CloneDirectory, "."))
}

// GetHTTPCachePath returns the sqlite file backing the response cache, or "" when caching is off.
func (c *AppConfig) GetHTTPCachePath() string {
	if c.NoHTTPCache {
		return ""
	}
	return ext.ExpandTilde(ext.DefaultValue(c.HTTPCache, DefaultHTTPCache)) + ".sqlite"
}

func (c *AppConfig) UseHTTPS() bool {
	return c.Protocol == "https"
}
