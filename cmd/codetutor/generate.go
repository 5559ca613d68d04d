package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"codetutor/internal/cache"
	"codetutor/internal/config"
	"codetutor/internal/flow"
	"codetutor/internal/llm"
	"codetutor/internal/output"
	"codetutor/internal/pipeline"
	"codetutor/internal/source"
	"codetutor/internal/ui"
)

func newGenerateCmd() *cobra.Command {
	cfg := config.Default()
	var configPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a tutorial from a GitHub repo or local directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				if err := mergeFile(cmd, configPath, &cfg); err != nil {
					return err
				}
			}
			if noCache {
				cfg.UseCache = false
			}
			if cfg.Token == "" {
				cfg.Token = os.Getenv("GITHUB_TOKEN")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGenerate(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Repo, "repo", "", "GitHub repository URL to document")
	f.StringVar(&cfg.Dir, "dir", "", "local directory to document")
	f.StringVar(&cfg.Name, "name", "", "project name (default derived from the source)")
	f.StringVar(&cfg.Token, "token", "", "GitHub token (default $GITHUB_TOKEN)")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output directory")
	f.StringSliceVar(&cfg.Include, "include", cfg.Include, "glob patterns of files to include")
	f.StringSliceVar(&cfg.Exclude, "exclude", cfg.Exclude, "glob patterns of files to exclude")
	f.Int64Var(&cfg.MaxFileSize, "max-size", cfg.MaxFileSize, "per-file size limit in bytes")
	f.StringVar(&cfg.Provider, "provider", cfg.Provider, "LLM provider (google-gemini, anthropic-claude, openai-gpt)")
	f.StringVar(&cfg.Model, "model", "", "model name override")
	f.BoolVar(&noCache, "no-cache", false, "bypass the response cache")
	f.StringVar(&cfg.CacheFile, "cache-file", cfg.CacheFile, "response cache file")
	f.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for LLM call logs")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent chapter drafts (1 preserves chapter continuity)")
	f.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "attempts per LLM stage")
	f.DurationVar((*time.Duration)(&cfg.RetryWait), "retry-wait", time.Duration(cfg.RetryWait), "delay between attempts")
	f.BoolVar(&cfg.Zip, "zip", false, "also write a zip archive of the tutorial")
	f.StringVar(&configPath, "config", "", "YAML config file (flags win over file values)")

	return cmd
}

// mergeFile loads a YAML config underneath whatever flags the user set
// explicitly: file values apply only where the flag was left untouched.
func mergeFile(cmd *cobra.Command, path string, cfg *config.Config) error {
	fromFile := config.Default()
	if err := config.LoadFile(path, &fromFile); err != nil {
		return err
	}
	flags := cmd.Flags()
	set := func(name string) bool { return flags.Changed(name) }

	if !set("repo") {
		cfg.Repo = fromFile.Repo
	}
	if !set("dir") {
		cfg.Dir = fromFile.Dir
	}
	if !set("name") {
		cfg.Name = fromFile.Name
	}
	if !set("output") {
		cfg.Output = fromFile.Output
	}
	if !set("include") {
		cfg.Include = fromFile.Include
	}
	if !set("exclude") {
		cfg.Exclude = fromFile.Exclude
	}
	if !set("max-size") {
		cfg.MaxFileSize = fromFile.MaxFileSize
	}
	if !set("provider") {
		cfg.Provider = fromFile.Provider
	}
	if !set("model") {
		cfg.Model = fromFile.Model
	}
	if !set("cache-file") {
		cfg.CacheFile = fromFile.CacheFile
	}
	if !set("log-dir") {
		cfg.LogDir = fromFile.LogDir
	}
	if !set("workers") {
		cfg.Workers = fromFile.Workers
	}
	if !set("max-retries") {
		cfg.MaxRetries = fromFile.MaxRetries
	}
	if !set("retry-wait") {
		cfg.RetryWait = fromFile.RetryWait
	}
	if !set("zip") {
		cfg.Zip = fromFile.Zip
	}
	if !set("no-cache") {
		cfg.UseCache = fromFile.UseCache
	}
	return nil
}

func runGenerate(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()

	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return err
	}
	cli, err := llm.New(ctx, llm.Config{Provider: provider, Model: cfg.Model})
	if err != nil {
		return err
	}
	defer cli.Close()

	mws := []llm.Middleware{llm.WithLogging(auditLogger(cfg.LogDir))}
	if cfg.UseCache {
		store, err := cache.Open(cfg.CacheFile)
		if err != nil {
			return err
		}
		mws = append(mws, llm.WithCache(store))
	}
	gateway := llm.Wrap(cli, mws...)

	spec := source.Spec{
		RepoURL:     cfg.Repo,
		LocalDir:    cfg.Dir,
		Token:       cfg.Token,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
	}
	ui.Infof("fetching source files...")
	files, err := source.Fetch(ctx, spec)
	if err != nil {
		return err
	}
	name := cfg.Name
	if name == "" {
		name = source.ProjectName(spec)
	}
	ui.Infof("analyzing %d files from %s", len(files), name)

	rc := &flow.Context{
		ProjectName: name,
		OutputDir:   cfg.Output,
		Files:       files,
	}
	runner := pipeline.NewRunner(gateway, pipeline.Options{
		OutputDir:   cfg.Output,
		Workers:     cfg.Workers,
		MaxAttempts: cfg.MaxRetries,
		Wait:        time.Duration(cfg.RetryWait),
	})
	if err := runner.Run(ctx, rc); err != nil {
		var pbe *flow.PartialBatchError
		if !errors.As(err, &pbe) {
			return err
		}
		ui.Warnf("%d chapter(s) failed and contain placeholders: positions %v", len(pbe.Failed), pbe.Failed)
	}

	ui.Successf("tutorial written to %s", rc.FinalOutputDir)
	if cfg.Zip {
		zipPath, err := output.Zip(rc.FinalOutputDir)
		if err != nil {
			return err
		}
		ui.Successf("archive written to %s", zipPath)
	}
	return nil
}

// auditLogger opens a per-day append-only log of every prompt and response.
// Failure to open degrades to discarding, never to aborting the run.
func auditLogger(dir string) *log.Logger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ui.Warnf("cannot create log dir %s: %v", dir, err)
		return log.New(io.Discard, "", 0)
	}
	path := filepath.Join(dir, fmt.Sprintf("llm_calls_%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		ui.Warnf("cannot open %s: %v", path, err)
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "", log.LstdFlags)
}
