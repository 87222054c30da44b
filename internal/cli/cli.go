// Package cli is the command line surface: flag parsing, merging flags over
// .ghsync.yaml and handing the result to the sync command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ghsync/internal/appConfig"
	"ghsync/internal/counter"
	"ghsync/internal/ext"
	"ghsync/internal/log"
	"ghsync/internal/syncCommand"
	"ghsync/internal/syncCommand/terminalView"
)

var Version = "dev"

// options holds what was given on the command line. Only flags that were
// actually changed override the config file.
type options struct {
	flags   appConfig.AppConfig
	verbose int
	quiet   int
	https   bool
	init    bool
}

// Execute runs ghsync with the process arguments and returns the exit status.
func Execute() int {
	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)
	return Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, interrupts)
}

// Run is Execute with explicit arguments, output streams and interrupt source.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, interrupts <-chan os.Signal) int {
	exitCode := counter.ExitOK
	command := NewCommand(stdout, stderr, interrupts, func(code int) { exitCode = code })
	command.SetArgs(args)
	if err := command.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "ghsync: %v\nRun 'ghsync --help' for usage.\n", err)
		return counter.ExitFatal
	}
	return exitCode
}

// NewCommand builds the root command. exit receives the status of a completed run.
func NewCommand(stdout, stderr io.Writer, interrupts <-chan os.Signal, exit func(int)) *cobra.Command {
	o := &options{}
	command := newCommand(o, func(cmd *cobra.Command) error {
		config, err := loadMergedConfig(cmd, o)
		if err != nil {
			return err
		}
		if err := config.Validate(); err != nil {
			return err
		}
		if o.init {
			return writeConfig(stdout, config)
		}
		logger.InitLogger(config.Verbosity >= 2)
		logger.Log.Infof("ghsync %s, owner %s", Version, config.Owner())
		exit(newSyncCommand(config, stdout, stderr, interrupts).Execute(cmd.Context()))
		return nil
	})
	command.SetOut(stdout)
	command.SetErr(stderr)
	return command
}

func newCommand(o *options, run func(cmd *cobra.Command) error) *cobra.Command {
	command := &cobra.Command{
		Use:   "ghsync",
		Short: "Clone or update all repositories of a GitHub user or organization",
		Long: `ghsync clones every repository of a GitHub user or organization into the clone
directory, and fast-forwards the ones already there. Working trees with local
changes, unpushed commits or a different branch checked out are reported.

Settings are read from .ghsync.yaml in the working directory or the home
directory; command line flags take precedence.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	command.SetVersionTemplate("ghsync version {{.Version}}\n")
	command.Flags().SortFlags = false

	flags := command.Flags()
	flags.IntVarP(&o.flags.Concurrency, "concurrency", "c", appConfig.DefaultConcurrency, "number of repositories synced at the same time")
	flags.BoolVarP(&o.flags.DryRun, "dry-run", "n", false, "don't pull or clone, just print what would be done")
	flags.CountVarP(&o.quiet, "quiet", "q", "terser output, repeat to print only the final tally")
	flags.CountVarP(&o.verbose, "verbose", "v", "perform additional checks, repeat for more detail")
	flags.StringVar(&o.flags.StartFrom, "start-from", "", "skip all repositories that come before `REPO` alphabetically")
	flags.StringVar(&o.flags.User, "user", "", "the GitHub user")
	flags.StringVar(&o.flags.Organization, "organization", "", "the GitHub organization")
	flags.StringVar(&o.flags.Organization, "org", "", "alias of --organization")
	flags.BoolVar(&o.flags.Gists, "gists", false, "sync the user's gists instead of repositories")
	flags.StringVar(&o.flags.Pattern, "pattern", "", "only repositories whose name matches the shell `GLOB`")
	filterFlag(command, &o.flags.IncludeForks, "forks", false)
	filterFlag(command, &o.flags.IncludeArchived, "archived", false)
	filterFlag(command, &o.flags.IncludePrivate, "private", true)
	filterFlag(command, &o.flags.IncludeDisabled, "disabled", true)
	flags.StringVar(&o.flags.Token, "github-token", "", "GitHub API token, default is $"+appConfig.DefaultTokenEnvVar)
	flags.StringVar(&o.flags.HTTPCache, "http-cache", appConfig.DefaultHTTPCache, "cache API responses in the sqlite database `NAME`.sqlite")
	flags.BoolVar(&o.flags.NoHTTPCache, "no-http-cache", false, "disable the API response cache")
	flags.StringVarP(&o.flags.CloneDirectory, "directory", "C", "", "clone into `DIR` instead of the working directory")
	flags.BoolVar(&o.https, "https", false, "clone over https instead of ssh")
	flags.IntVar(&o.flags.RateLimitPerSecond, "rate-limit", 0, "start at most `N` repositories a second, 0 for no limit")
	flags.BoolVar(&o.init, "init", false, "write "+appConfig.FileName+" from the command line flags")
	return command
}

// filterFlag registers the --include-X / --exclude-X pair sharing one tri-state setting.
func filterFlag(command *cobra.Command, target *ext.NullableBool, what string, included bool) {
	defaultText := "excluded"
	if included {
		defaultText = "included"
	}
	flags := command.Flags()
	flags.VarPF(target, "include-"+what, "", fmt.Sprintf("include %s repositories (default %s)", what, defaultText)).NoOptDefVal = "true"
	flags.VarPF(ext.Negated{Target: target}, "exclude-"+what, "", fmt.Sprintf("exclude %s repositories", what)).NoOptDefVal = "true"
}

func loadMergedConfig(cmd *cobra.Command, o *options) (*appConfig.AppConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	home, _ := os.UserHomeDir()
	config, err := appConfig.LoadConfig(appConfig.FindConfigFile(cwd, home))
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("concurrency") && o.flags.Concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", o.flags.Concurrency)
	}
	merge(config, o, cmd.Flags().Changed)
	return config, nil
}

// merge lays the changed command line flags over config.
func merge(config *appConfig.AppConfig, o *options, changed func(name string) bool) {
	f := &o.flags
	if changed("user") || changed("organization") || changed("org") {
		config.User = f.User
		config.Organization = f.Organization
	}
	overrides := []struct {
		names []string
		apply func()
	}{
		{[]string{"gists"}, func() { config.Gists = f.Gists }},
		{[]string{"pattern"}, func() { config.Pattern = f.Pattern }},
		{[]string{"concurrency"}, func() { config.Concurrency = f.Concurrency }},
		{[]string{"github-token"}, func() { config.Token = f.Token }},
		{[]string{"http-cache"}, func() { config.HTTPCache = f.HTTPCache }},
		{[]string{"directory"}, func() { config.CloneDirectory = f.CloneDirectory }},
		{[]string{"rate-limit"}, func() { config.RateLimitPerSecond = f.RateLimitPerSecond }},
		{[]string{"https"}, func() { config.Protocol = "https" }},
	}
	for _, override := range overrides {
		for _, name := range override.names {
			if changed(name) {
				override.apply()
				break
			}
		}
	}
	config.IncludeForks = f.IncludeForks.Or(config.IncludeForks)
	config.IncludeArchived = f.IncludeArchived.Or(config.IncludeArchived)
	config.IncludePrivate = f.IncludePrivate.Or(config.IncludePrivate)
	config.IncludeDisabled = f.IncludeDisabled.Or(config.IncludeDisabled)

	config.NoHTTPCache = f.NoHTTPCache
	config.DryRun = f.DryRun
	config.StartFrom = f.StartFrom
	config.Verbosity = o.verbose - o.quiet
}

func writeConfig(stdout io.Writer, config *appConfig.AppConfig) error {
	if config.DryRun {
		_, _ = fmt.Fprintf(stdout, "Did not write %s because --dry-run was specified\n", appConfig.FileName)
		return nil
	}
	if err := config.WriteConfig(appConfig.FileName); err != nil {
		return fmt.Errorf("failed to write %s: %w", appConfig.FileName, err)
	}
	_, _ = fmt.Fprintf(stdout, "Wrote %s\n", appConfig.FileName)
	return nil
}

func newSyncCommand(config *appConfig.AppConfig, stdout, stderr io.Writer, interrupts <-chan os.Signal) *syncCommand.SyncCommand {
	command := &syncCommand.SyncCommand{
		Config:     config,
		Out:        stdout,
		Err:        stderr,
		Interrupts: interrupts,
	}
	if file, ok := stdout.(*os.File); ok {
		command.IsTTY = terminalView.IsTerminal(file)
		command.Width = terminalView.TerminalWidth(file)
	}
	return command
}
