package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// EnvConfigPath names the environment variable consulted when no --config flag is given.
const EnvConfigPath = "LINTFIX_CONFIG"

type Config struct {
	Logger     Logger     `yaml:"logger"`
	Linter     Linter     `yaml:"linter"`
	LLM        LLM        `yaml:"llm"`
	Fixer      Fixer      `yaml:"fixer"`
	HTTPClient HTTPClient `yaml:"http_client"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type Linter struct {
	Format         string   `yaml:"format"`
	IssueExitCodes []int    `yaml:"issue_exit_codes"`
	FormatFirst    bool     `yaml:"format_first"`
	ApplySafeFixes bool     `yaml:"apply_safe_fixes"`
	CommandArgs    []string `yaml:"command_args"`
	AdditionalArgs []string `yaml:"additional_args"`
}

type LLM struct {
	APIURL            string   `yaml:"api_url"`
	Model             string   `yaml:"model"`
	SystemPrompt      string   `yaml:"system_prompt"`
	Temperature       *float32 `yaml:"temperature"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

type Fixer struct {
	ConcurrentJobs int  `yaml:"concurrent_jobs"`
	ShowDiff       bool `yaml:"show_diff"`
}

type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       *int            `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ValidateConfigPath checks that path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the configuration at configPath and fills every unset value with its default.
// An empty configPath falls back to LINTFIX_CONFIG; when neither is set the defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}
	if configPath != "" {
		if err := LoadYAML(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a configuration made of default values only.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	cfg.Logger.Level = SetThen(cfg.Logger.Level, DefaultLogLevel)

	cfg.Linter.Format = SetThen(cfg.Linter.Format, DefaultLinterFormat)
	cfg.Linter.IssueExitCodes = SetThen(cfg.Linter.IssueExitCodes, DefaultIssueExitCodes())

	cfg.LLM.APIURL = SetThen(cfg.LLM.APIURL, DefaultAPIURL)
	cfg.LLM.Model = SetThen(cfg.LLM.Model, DefaultModel)
	cfg.LLM.SystemPrompt = SetThen(cfg.LLM.SystemPrompt, DefaultSystemPrompt)

	cfg.Fixer.ConcurrentJobs = SetThen(cfg.Fixer.ConcurrentJobs, DefaultConcurrentJobs)

	defaults := DefaultRestyConfig()
	if cfg.HTTPClient.RetryCount == nil {
		retryCount := defaults.RetryCount
		cfg.HTTPClient.RetryCount = &retryCount
	}
	cfg.HTTPClient.RetryWaitTime = SetThen(cfg.HTTPClient.RetryWaitTime, defaults.RetryWaitTime)
	cfg.HTTPClient.RetryMaxWaitTime = SetThen(cfg.HTTPClient.RetryMaxWaitTime, defaults.RetryMaxWaitTime)
	cfg.HTTPClient.Timeout = SetThen(cfg.HTTPClient.Timeout, defaults.Timeout)
}
