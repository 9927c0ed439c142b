package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/roelfdiedericks/chatextract/internal/cleaner"
	"github.com/roelfdiedericks/chatextract/internal/config"
	. "github.com/roelfdiedericks/chatextract/internal/logging"
	"github.com/roelfdiedericks/chatextract/internal/pipeline"
	"github.com/roelfdiedericks/chatextract/internal/sink"
)

// CLI is the command line grammar. Flags override the config file.
type CLI struct {
	Query []string `arg:"" optional:"" help:"Query to submit. Omit to extract the page as it is."`

	Clean    bool          `help:"Strip navigation and other page noise from the content."`
	Verbose  bool          `short:"v" help:"Timestamped progress logging on stderr."`
	Site     string        `help:"Site profile, e.g. deepseek or doubao." placeholder:"NAME"`
	Browser  string        `help:"Scriptable browser application name." placeholder:"APP"`
	NewTab   bool          `name:"new-tab" help:"Open the site in a new tab instead of using an existing one."`
	Format   string        `help:"Capture format: text, article or markdown." placeholder:"FORMAT"`
	Wait     time.Duration `help:"Wait after submitting the query before extracting." placeholder:"DURATION"`
	NoRetry  bool          `name:"no-retry" help:"Do not retry when the content is short."`
	Output   string        `short:"o" type:"path" help:"Also write the result as JSON to FILE." placeholder:"FILE"`
	TextOnly bool          `name:"text-only" help:"Print the content without result markers."`

	ResultsDir string        `name:"results-dir" type:"path" help:"Directory for result files (default: system temp dir)." placeholder:"DIR"`
	Config     string        `type:"path" help:"Config file (default: ./chatextract.toml, then ~/.chatextract/config.toml)." placeholder:"FILE"`
	Timeout    time.Duration `help:"Abort the whole run after this long." placeholder:"DURATION"`
	ListSites  bool          `name:"list-sites" help:"List site profiles and exit."`

	Version kong.VersionFlag `help:"Print version and exit."`
}

// Run executes one invocation and returns the process exit status.
func (c *CLI) Run(stdout, stderr io.Writer, newController ControllerFactory) int {
	logCfg := DefaultConfig()
	if c.Verbose {
		logCfg = VerboseConfig()
	}
	logCfg.Output = stderr
	Init(logCfg)
	SetOutput(stderr)
	SetLevel(logCfg.Level)

	cfg, cfgPath, err := config.Load(c.Config)
	if err != nil {
		return failf(stderr, "%v", err)
	}
	if cfgPath != "" {
		L_debug("cli: using config", "path", cfgPath)
	}
	c.applyTo(cfg)

	if c.ListSites {
		for _, name := range cfg.SiteNames() {
			fmt.Fprintf(stdout, "%-12s %s\n", name, cfg.Sites[name].URLContains)
		}
		return 0
	}

	siteName, site, err := cfg.SiteProfile(cfg.Site)
	if err != nil {
		return failf(stderr, "%v", err)
	}

	req, err := c.request(cfg, siteName, site)
	if err != nil {
		return failf(stderr, "%v", err)
	}

	var res pipeline.Result
	ctrl, err := newController(cfg.Browser, cfg.ResolveScriptTimeout())
	if err != nil {
		res = pipeline.Failed(req, err)
	} else {
		timeout := c.runTimeout(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res = pipeline.New(ctrl).Run(ctx, req)
	}

	out := sink.New(sink.Options{
		Dir:      cfg.ResultsDir,
		JSONPath: c.Output,
		TextOnly: c.TextOnly,
		Stdout:   stdout,
		Stderr:   stderr,
	})
	if _, err := out.Emit(res, site.Label); err != nil {
		return failf(stderr, "%v", err)
	}

	if !res.Success {
		return failf(stderr, "%s", diagnose(res.Err, site, cfg.Browser, c.runTimeout(cfg)))
	}
	return 0
}

// applyTo copies set flags over the loaded config.
func (c *CLI) applyTo(cfg *config.Config) {
	if c.Site != "" {
		cfg.Site = c.Site
	}
	if c.Browser != "" {
		cfg.Browser = c.Browser
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.ResultsDir != "" {
		cfg.ResultsDir = c.ResultsDir
	}
	if c.Wait > 0 {
		cfg.Wait.PostSubmit = c.Wait.String()
	}
	if c.NoRetry {
		cfg.Retry.Disabled = true
	}
}

func (c *CLI) runTimeout(cfg *config.Config) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return cfg.ResolveRunTimeout()
}

func (c *CLI) request(cfg *config.Config, siteName string, site config.Site) (pipeline.Request, error) {
	format, err := pipeline.ParseFormat(cfg.Format)
	if err != nil {
		return pipeline.Request{}, err
	}

	query := strings.TrimSpace(strings.Join(c.Query, " "))

	req := pipeline.Request{
		Site:                siteName,
		TargetURL:           site.URLContains,
		StartURL:            site.StartURL,
		NewTab:              c.NewTab,
		Query:               query,
		InputSelectors:      site.InputSelectors,
		SubmitDelay:         cfg.Wait.ResolveSubmitDelay(),
		Format:              format,
		RetryOnShort:        !cfg.Retry.Disabled,
		MinAcceptableLength: cfg.Retry.MinLength,
		Waits: pipeline.WaitPolicy{
			PostNavigation: cfg.Wait.ResolvePostNavigation(),
			PostSubmit:     cfg.Wait.ResolvePostSubmit(),
			Retry:          cfg.Wait.ResolveRetry(),
		},
	}

	if c.Clean {
		opts := cleaner.Options{
			Denylist:      site.Denylist,
			DenyPatterns:  site.DenyPatterns,
			MinLineLength: cfg.Clean.MinLineLength,
			MaxLines:      cfg.Clean.MaxLines,
		}
		if cfg.Clean.FocusQuery {
			opts.Focus = query
		}
		filter, err := cleaner.New(opts)
		if err != nil {
			return pipeline.Request{}, fmt.Errorf("site %s: %w", siteName, err)
		}
		req.Cleaner = filter
	}
	return req, nil
}

// diagnose turns a run failure into the stderr message.
func diagnose(err error, site config.Site, app string, timeout time.Duration) string {
	var notFound *pipeline.TabNotFoundError
	switch {
	case err == nil:
		return "run failed"
	case errors.As(err, &notFound):
		return fmt.Sprintf("%v\nOpen %s in %s, or rerun with --new-tab.", err, site.StartURL, app)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("run did not finish within %s", timeout)
	default:
		return err.Error()
	}
}

func failf(w io.Writer, format string, args ...interface{}) int {
	sink.Diagnostic(w, fmt.Sprintf(format, args...))
	return 1
}
