// Package config holds the rule configuration. The CLI loads it once and
// threads it into the analysis entry point; the core never reads config state
// from globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

type Whitelist struct {
	Keywords []string `yaml:"keywords,omitempty"`
	Paths    []string `yaml:"paths,omitempty"`
}

// CustomKeywords are per-rule name lists that extend the built-in
// conventions.
type CustomKeywords struct {
	RequestMethods        []string `yaml:"requestMethods,omitempty"`
	LoadingMethods        []string `yaml:"loadingMethods,omitempty"`
	SuccessMethods        []string `yaml:"successMethods,omitempty"`
	EmptyComponents       []string `yaml:"emptyComponents,omitempty"`
	InputComponents       []string `yaml:"inputComponents,omitempty"`
	PlaceholderAttributes []string `yaml:"placeholderAttributes,omitempty"`
}

type RuleConfig struct {
	Enabled        *bool          `yaml:"enabled,omitempty"`
	Whitelist      Whitelist      `yaml:"whitelist,omitempty"`
	CustomKeywords CustomKeywords `yaml:"customKeywords,omitempty"`
}

// On reports whether the rule runs; rules are on unless disabled explicitly.
func (r *RuleConfig) On() bool {
	return r == nil || r.Enabled == nil || *r.Enabled
}

// WhitelistedKeyword reports whether s contains any whitelist keyword
// (case-insensitive).
func (r *RuleConfig) WhitelistedKeyword(s string) bool {
	if r == nil {
		return false
	}
	ls := strings.ToLower(s)
	for _, kw := range r.Whitelist.Keywords {
		if kw != "" && strings.Contains(ls, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// WhitelistedPath reports whether the repo-relative path matches any
// whitelist glob or path substring.
func (r *RuleConfig) WhitelistedPath(path string) bool {
	if r == nil {
		return false
	}
	p := filepath.ToSlash(path)
	for _, pat := range r.Whitelist.Paths {
		if pat == "" {
			continue
		}
		if ok, err := doublestar.Match(pat, p); err == nil && ok {
			return true
		}
		if strings.Contains(p, pat) {
			return true
		}
	}
	return false
}

type Config struct {
	FileExtensions []string   `yaml:"fileExtensions,omitempty"`
	Ignore         []string   `yaml:"ignore,omitempty"`
	Rule1          RuleConfig `yaml:"rule1,omitempty"`
	Rule2          RuleConfig `yaml:"rule2,omitempty"`
	Rule3          RuleConfig `yaml:"rule3,omitempty"`
	Rule4          RuleConfig `yaml:"rule4,omitempty"`
	Rule5          RuleConfig `yaml:"rule5,omitempty"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		FileExtensions: []string{".js", ".jsx", ".ts", ".tsx", ".vue"},
		Ignore:         []string{"**/node_modules/**", "**/dist/**", "**/build/**", "**/*.min.js", "**/*.d.ts"},
		Rule1: RuleConfig{CustomKeywords: CustomKeywords{
			RequestMethods: []string{"fetch", "axios", "request", "http", "api", "action", "dispatch", "xhr", "ajax", "fetchdataapi"},
		}},
		Rule2: RuleConfig{CustomKeywords: CustomKeywords{
			LoadingMethods: []string{"showLoading", "hideLoading", "startLoading", "stopLoading", "openLoading", "closeLoading"},
		}},
		Rule3: RuleConfig{CustomKeywords: CustomKeywords{
			SuccessMethods: []string{"message.success", "Message.success", "toast.success", "Toast.success", "notification.success", "$message.success", "ElMessage.success", "showSuccess"},
		}},
		Rule4: RuleConfig{CustomKeywords: CustomKeywords{
			EmptyComponents: []string{"Empty", "NoData", "EmptyState", "a-empty", "el-empty", "van-empty"},
		}},
		Rule5: RuleConfig{CustomKeywords: CustomKeywords{
			InputComponents:       []string{"Input", "InputNumber", "Select", "Textarea", "TextArea", "AutoComplete", "Cascader", "TreeSelect", "Mentions", "a-input", "a-select", "el-input", "el-select", "van-field"},
			PlaceholderAttributes: []string{"placeholder", ":placeholder", "v-bind:placeholder"},
		}},
	}
}

// Rule returns the block for rule n (1-5); nil for unknown rule numbers.
func (c *Config) Rule(n int) *RuleConfig {
	if c == nil {
		return nil
	}
	switch n {
	case 1:
		return &c.Rule1
	case 2:
		return &c.Rule2
	case 3:
		return &c.Rule3
	case 4:
		return &c.Rule4
	case 5:
		return &c.Rule5
	}
	return nil
}

// MatchesExtension reports whether the path's extension is analyzed.
func (c *Config) MatchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.FileExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Ignored reports whether a repo-relative path matches an ignore glob.
func (c *Config) Ignored(path string) bool {
	p := filepath.ToSlash(path)
	for _, pat := range c.Ignore {
		if ok, err := doublestar.Match(pat, p); err == nil && ok {
			return true
		}
	}
	return false
}

// Load reads a YAML config file and merges it over the defaults. A missing
// path returns the defaults; an unreadable or malformed file is a fatal
// configuration error and must stop the run before any file is analyzed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores keyword lists a user config left empty, so partial
// overrides do not silently disable a convention.
func (c *Config) fillDefaults() {
	def := Default()
	if len(c.FileExtensions) == 0 {
		c.FileExtensions = def.FileExtensions
	}
	if len(c.Ignore) == 0 {
		c.Ignore = def.Ignore
	}
	if len(c.Rule1.CustomKeywords.RequestMethods) == 0 {
		c.Rule1.CustomKeywords.RequestMethods = def.Rule1.CustomKeywords.RequestMethods
	}
	if len(c.Rule2.CustomKeywords.LoadingMethods) == 0 {
		c.Rule2.CustomKeywords.LoadingMethods = def.Rule2.CustomKeywords.LoadingMethods
	}
	if len(c.Rule3.CustomKeywords.SuccessMethods) == 0 {
		c.Rule3.CustomKeywords.SuccessMethods = def.Rule3.CustomKeywords.SuccessMethods
	}
	if len(c.Rule4.CustomKeywords.EmptyComponents) == 0 {
		c.Rule4.CustomKeywords.EmptyComponents = def.Rule4.CustomKeywords.EmptyComponents
	}
	if len(c.Rule5.CustomKeywords.InputComponents) == 0 {
		c.Rule5.CustomKeywords.InputComponents = def.Rule5.CustomKeywords.InputComponents
	}
	if len(c.Rule5.CustomKeywords.PlaceholderAttributes) == 0 {
		c.Rule5.CustomKeywords.PlaceholderAttributes = def.Rule5.CustomKeywords.PlaceholderAttributes
	}
}
