package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/roelfdiedericks/chatextract/internal/logging"
	"github.com/roelfdiedericks/chatextract/internal/paths"
)

// Defaults. Durations are kept as strings in the file and resolved on use.
const (
	DefaultSite          = "deepseek"
	DefaultBrowser       = "Google Chrome"
	DefaultScriptTimeout = 30 * time.Second
	DefaultRunTimeout    = 3 * time.Minute
	DefaultPostNav       = 1 * time.Second
	DefaultPostSubmit    = 8 * time.Second
	DefaultRetryWait     = 5 * time.Second
	DefaultSubmitDelay   = 300 * time.Millisecond
	DefaultMinLineLength = 20
	DefaultMaxLines      = 100
	DefaultMinLength     = 500
)

// Config is the merged chatextract configuration
type Config struct {
	Site          string          `toml:"site"`           // Default site profile
	Browser       string          `toml:"browser"`        // Scriptable browser application name
	ResultsDir    string          `toml:"results_dir"`    // Empty = system temp dir
	ScriptTimeout string          `toml:"script_timeout"` // Per-script bound, e.g. "30s"
	RunTimeout    string          `toml:"run_timeout"`    // Whole-run bound, e.g. "3m"
	Format        string          `toml:"format"`         // text, article, markdown
	Wait          WaitConfig      `toml:"wait"`
	Clean         CleanConfig     `toml:"clean"`
	Retry         RetryConfig     `toml:"retry"`
	Sites         map[string]Site `toml:"sites"`
}

// WaitConfig holds the settle delays
type WaitConfig struct {
	PostNavigation string `toml:"post_navigation"`
	PostSubmit     string `toml:"post_submit"`
	Retry          string `toml:"retry"`
	SubmitDelay    string `toml:"submit_delay"` // In-page delay between input and Enter
}

// CleanConfig holds the line filter thresholds
type CleanConfig struct {
	MinLineLength int  `toml:"min_line_length"`
	MaxLines      int  `toml:"max_lines"`
	FocusQuery    bool `toml:"focus_query"`
}

// RetryConfig controls the short-content retry
type RetryConfig struct {
	Disabled  bool `toml:"disabled"`
	MinLength int  `toml:"min_length"`
}

// Site describes one chat front end
type Site struct {
	Label          string   `toml:"label"`           // Shown in the result markers
	URLContains    string   `toml:"url_contains"`    // Tab match substring
	StartURL       string   `toml:"start_url"`       // Opened by --new-tab
	Denylist       []string `toml:"denylist"`        // Exact navigation labels
	DenyPatterns   []string `toml:"deny_patterns"`   // Regexps for chrome lines
	InputSelectors []string `toml:"input_selectors"` // Query input priority
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Site:          DefaultSite,
		Browser:       DefaultBrowser,
		ScriptTimeout: DefaultScriptTimeout.String(),
		RunTimeout:    DefaultRunTimeout.String(),
		Format:        "text",
		Wait: WaitConfig{
			PostNavigation: DefaultPostNav.String(),
			PostSubmit:     DefaultPostSubmit.String(),
			Retry:          DefaultRetryWait.String(),
			SubmitDelay:    DefaultSubmitDelay.String(),
		},
		Clean: CleanConfig{
			MinLineLength: DefaultMinLineLength,
			MaxLines:      DefaultMaxLines,
		},
		Retry: RetryConfig{
			MinLength: DefaultMinLength,
		},
		Sites: BuiltinSites(),
	}
}

// Load reads the config file at path (resolved via paths.ConfigPath) and
// fills every unset value from Default. A missing file yields the defaults.
func Load(explicitPath string) (*Config, string, error) {
	path, err := paths.ConfigPath(explicitPath)
	if err != nil {
		return nil, "", err
	}

	cfg := Config{}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, path, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			logging.L_warn("config: unknown keys ignored", "path", path, "keys", undecoded)
		}
		logging.L_debug("config: loaded", "path", path)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}

// Parse decodes TOML text and applies defaults. Used by tests and for
// inline configs.
func Parse(data string) (*Config, error) {
	cfg := Config{}
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	def := Default()
	if err := mergo.Merge(c, def); err != nil {
		return fmt.Errorf("failed to merge defaults: %w", err)
	}

	// Sites present in the file replace the built-in entry; fill their holes
	// from the built-in profile of the same name.
	builtin := BuiltinSites()
	for name, site := range c.Sites {
		base, ok := builtin[name]
		if !ok {
			base = Site{InputSelectors: DefaultInputSelectors()}
		}
		if err := mergo.Merge(&site, base); err != nil {
			return fmt.Errorf("failed to merge site %s: %w", name, err)
		}
		if site.Label == "" {
			site.Label = strings.ToUpper(name)
		}
		c.Sites[name] = site
	}
	return nil
}

// SiteProfile returns the named site, or the default site when name is empty.
func (c *Config) SiteProfile(name string) (string, Site, error) {
	if name == "" {
		name = c.Site
	}
	name = strings.ToLower(strings.TrimSpace(name))
	site, ok := c.Sites[name]
	if !ok {
		return name, Site{}, fmt.Errorf("unknown site %q (known: %s)", name, strings.Join(c.SiteNames(), ", "))
	}
	if site.URLContains == "" {
		return name, Site{}, fmt.Errorf("site %q has no url_contains", name)
	}
	return name, site, nil
}

// SiteNames returns the configured site names, sorted
func (c *Config) SiteNames() []string {
	names := make([]string, 0, len(c.Sites))
	for name := range c.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveDuration parses s, returning def when s is empty or invalid.
func ResolveDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		logging.L_warn("config: invalid duration, using default", "value", s, "default", def)
		return def
	}
	return d
}

// ResolveScriptTimeout returns the per-script timeout
func (c *Config) ResolveScriptTimeout() time.Duration {
	return ResolveDuration(c.ScriptTimeout, DefaultScriptTimeout)
}

// ResolveRunTimeout returns the whole-run timeout
func (c *Config) ResolveRunTimeout() time.Duration {
	return ResolveDuration(c.RunTimeout, DefaultRunTimeout)
}

// ResolvePostNavigation returns the settle delay after opening or
// activating a tab, before a query is typed
func (w *WaitConfig) ResolvePostNavigation() time.Duration {
	return ResolveDuration(w.PostNavigation, DefaultPostNav)
}

// ResolvePostSubmit returns the delay after submitting a query
func (w *WaitConfig) ResolvePostSubmit() time.Duration {
	return ResolveDuration(w.PostSubmit, DefaultPostSubmit)
}

// ResolveRetry returns the delay before the short-content retry
func (w *WaitConfig) ResolveRetry() time.Duration {
	return ResolveDuration(w.Retry, DefaultRetryWait)
}

// ResolveSubmitDelay returns the in-page delay before Enter is dispatched
func (w *WaitConfig) ResolveSubmitDelay() time.Duration {
	return ResolveDuration(w.SubmitDelay, DefaultSubmitDelay)
}
