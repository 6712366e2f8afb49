package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/eagerapi-go/config"
	"github.com/bitfsorg/eagerapi-go/eagerapi"
	"github.com/bitfsorg/eagerapi-go/logutil"
)

// options holds the persistent flags.
type options struct {
	configPath string
	repo       string
	format     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "eagerctl",
		Short: "Query a local eager repository through the EdenAPI protocol",
		Long: `eagerctl answers EdenAPI batch queries (files, history, trees, commit
graph, bookmarks, clone data, location translation) from a local eager
repository, and builds fixture repositories for tests.

The repository comes from --repo, or from paths.default / edenapi.url in
the config file when they hold an eager: URL.

Examples:
  eagerctl --repo /tmp/repo put hello.txt
  eagerctl --repo /tmp/repo files a.txt@<hex>
  eagerctl --repo eager:/tmp/repo graph --head <hex> --format cbor`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default: <datadir>/config.toml when present)")
	pf.StringVar(&opts.repo, "repo", "", "Repository directory or eager: URL")
	pf.StringVar(&opts.format, "format", string(FormatJSON), "Output format (json, cbor)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newHealthCmd(opts),
		newFilesCmd(opts),
		newHistoryCmd(opts),
		newTreesCmd(opts),
		newRevlogCmd(opts),
		newKnownCmd(opts),
		newGraphCmd(opts),
		newBookmarksCmd(opts),
		newCloneCmd(opts),
		newPullCmd(opts),
		newHashToLocationCmd(opts),
		newLocationToHashCmd(opts),
		newPutCmd(opts),
		newCommitCmd(opts),
		newBookmarkSetCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig resolves settings: --config, then the default config file,
// then defaults with environment overrides. --repo and --log-level win.
func (o *options) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	switch {
	case o.configPath != "":
		cfg, err = config.LoadConfig(o.configPath)
	default:
		cfg, err = config.LoadConfig(config.ConfigPath(config.DefaultDataDir()))
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.FromEnv()
		}
	}
	if err != nil {
		return config.Config{}, err
	}

	if o.repo != "" {
		if _, ok := eagerapi.URLToDir(o.repo); ok {
			cfg.Paths.Default = o.repo
		} else {
			cfg.Paths.Default = "eager:" + o.repo
		}
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// repoDir returns the configured repository directory.
func (o *options) repoDir() (string, config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return "", config.Config{}, err
	}
	for _, value := range []string{cfg.Paths.Default, cfg.EdenAPI.URL} {
		if dir, ok := eagerapi.URLToDir(value); ok {
			return dir, cfg, nil
		}
	}
	return "", config.Config{}, eagerapi.ErrNotConfigured
}

// newLogger builds the logger for cfg. The returned closer is never nil.
func newLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := logutil.LevelFromString(cfg.LogLevel)
	if cfg.LogFile == "" {
		return logutil.New(stderr, level), io.NopCloser(nil), nil
	}
	logger, f, err := logutil.NewFile(cfg.LogFile, level)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return logger, f, nil
}

// withRepo opens the configured repository, runs fn and closes it.
func (o *options) withRepo(cmd *cobra.Command, fn func(repo *eagerapi.Repo) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	repo, err := eagerapi.OpenFromConfig(cfg, eagerapi.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()
	return fn(repo)
}
