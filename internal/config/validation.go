package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var supportedLinterFormats = []string{"json-lines", "json", "sarif", "text"}

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateLinterConfig(&cfg.Linter); err != nil {
		return fmt.Errorf("YAML global config: linter directive is invalid: %w", err)
	}
	if err := ValidateLLMConfig(&cfg.LLM); err != nil {
		return fmt.Errorf("YAML global config: llm directive is invalid: %w", err)
	}
	if err := ValidateFixerConfig(&cfg.Fixer); err != nil {
		return fmt.Errorf("YAML global config: fixer directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

// ValidateLinterConfig checks the linter output format and exit code settings.
func ValidateLinterConfig(linterConfig *Linter) error {
	if linterConfig == nil {
		return fmt.Errorf("linter configuration is nil")
	}
	if !isInList(linterConfig.Format, supportedLinterFormats) {
		return fmt.Errorf("unsupported format %q, expected one of: %s", linterConfig.Format, strings.Join(supportedLinterFormats, ", "))
	}
	if len(linterConfig.IssueExitCodes) == 0 {
		return fmt.Errorf("issue_exit_codes must contain at least one exit code")
	}
	for _, code := range linterConfig.IssueExitCodes {
		if code <= 0 || code > 255 {
			return fmt.Errorf("issue_exit_codes must be between 1 and 255: %d", code)
		}
	}
	if len(linterConfig.CommandArgs) > 0 && !containsRootPlaceholder(linterConfig.CommandArgs) {
		return fmt.Errorf("command_args must contain the %s placeholder", RootPlaceholder)
	}
	return nil
}

// ValidateLLMConfig checks the completion API settings.
func ValidateLLMConfig(llmConfig *LLM) error {
	if llmConfig == nil {
		return fmt.Errorf("llm configuration is nil")
	}
	u, err := url.Parse(llmConfig.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https scheme: %q", llmConfig.APIURL)
	}
	if strings.TrimSpace(llmConfig.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if llmConfig.Temperature != nil && (*llmConfig.Temperature < 0 || *llmConfig.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2: %v", *llmConfig.Temperature)
	}
	if llmConfig.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute cannot be negative: %d", llmConfig.RequestsPerMinute)
	}
	return nil
}

// ValidateFixerConfig checks the per-file worker settings.
func ValidateFixerConfig(fixerConfig *Fixer) error {
	if fixerConfig == nil {
		return fmt.Errorf("fixer configuration is nil")
	}
	if fixerConfig.ConcurrentJobs <= 0 || fixerConfig.ConcurrentJobs > 64 {
		return fmt.Errorf("concurrent_jobs must be between 1 and 64: %d", fixerConfig.ConcurrentJobs)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount != nil && (*httpConfig.RetryCount < 0 || *httpConfig.RetryCount > 20) {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", *httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}
	if err := validateDuration(httpConfig.Timeout, "Timeout", 10*time.Minute); err != nil {
		return err
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %s: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%s duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	return validatePort(proxy.Port)
}

// validateHost checks if the host part of the proxy configuration is valid.
// It ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// RootPlaceholder is substituted with the target folder in linter.command_args.
const RootPlaceholder = "{root}"

func containsRootPlaceholder(args []string) bool {
	for _, arg := range args {
		if strings.Contains(arg, RootPlaceholder) {
			return true
		}
	}
	return false
}

func isInList(target string, list []string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
