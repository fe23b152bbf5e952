package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/sashabaranov/go-openai"

	"github.com/scan-io-git/lintfix/internal/config"
	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

// Options configure the chat-completions endpoint.
type Options struct {
	APIURL       string
	Model        string
	SystemPrompt string
	Temperature  *float32
}

// Client asks a chat-completions API for fixed file bodies.
type Client struct {
	http   *resty.Client
	apiKey string
	opts   Options
	logger hclog.Logger
}

// NewClient creates a completion client on top of a configured resty client.
func NewClient(apiKey string, opts Options, httpClient *resty.Client, logger hclog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("api key is required")
	}
	if httpClient == nil {
		httpClient = resty.New()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	opts.APIURL = config.SetThen(opts.APIURL, config.DefaultAPIURL)
	opts.Model = config.SetThen(opts.Model, config.DefaultModel)
	opts.SystemPrompt = config.SetThen(opts.SystemPrompt, config.DefaultSystemPrompt)

	return &Client{
		http:   httpClient,
		apiKey: apiKey,
		opts:   opts,
		logger: logger,
	}, nil
}

// NewClientFromConfig creates a completion client from the llm section of cfg.
func NewClientFromConfig(apiKey string, cfg *config.Config, httpClient *resty.Client, logger hclog.Logger) (*Client, error) {
	return NewClient(apiKey, Options{
		APIURL:       cfg.LLM.APIURL,
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.LLM.SystemPrompt,
		Temperature:  cfg.LLM.Temperature,
	}, httpClient, logger)
}

// RequestFix sends one file with its issues and returns the proposed replacement body.
// Every failure is returned as an *errors.ApiError for req.FilePath.
func (c *Client) RequestFix(ctx context.Context, req issues.FixRequest) (issues.FixResponse, error) {
	c.logger.Debug("requesting fix", "path", req.FilePath, "issues", len(req.Issues), "model", c.opts.Model)

	completion, status, err := c.complete(ctx, BuildPrompt(req))
	if err != nil {
		return issues.FixResponse{}, &lferrors.ApiError{Path: req.FilePath, StatusCode: status, Err: err}
	}

	content := ExtractFixedContent(req.OriginalContents, completion)
	if strings.TrimSpace(content) == "" {
		return issues.FixResponse{}, &lferrors.ApiError{Path: req.FilePath, StatusCode: status, Err: errors.New("completion is empty")}
	}

	return issues.FixResponse{FilePath: req.FilePath, NewContents: content}, nil
}

// chatCompletionRequest shadows the temperature of the go-openai request, whose omitempty tag
// would drop an explicit 0.
type chatCompletionRequest struct {
	openai.ChatCompletionRequest
	Temperature *float32 `json:"temperature,omitempty"`
}

// complete performs a single chat completion and returns the first choice's content with the HTTP status.
func (c *Client) complete(ctx context.Context, prompt string) (string, int, error) {
	body := chatCompletionRequest{
		ChatCompletionRequest: openai.ChatCompletionRequest{
			Model: c.opts.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: c.opts.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		},
		Temperature: c.opts.Temperature,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(body).
		SetResult(&openai.ChatCompletionResponse{}).
		SetError(&openai.ErrorResponse{}).
		Post(c.opts.APIURL)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return "", status, fmt.Errorf("sending completion request: %w", err)
	}

	if resp.IsError() {
		return "", resp.StatusCode(), fmt.Errorf("completion API error: %s", errorMessage(resp))
	}
	if !resp.IsSuccess() {
		return "", resp.StatusCode(), fmt.Errorf("unexpected completion API status %s", resp.Status())
	}

	result, ok := resp.Result().(*openai.ChatCompletionResponse)
	if !ok || result == nil {
		return "", resp.StatusCode(), errors.New("completion API returned a malformed body")
	}
	if len(result.Choices) == 0 {
		return "", resp.StatusCode(), errors.New("completion API returned no choices")
	}

	c.logger.Debug("received completion", "model", result.Model, "finishReason", result.Choices[0].FinishReason, "totalTokens", result.Usage.TotalTokens)
	return result.Choices[0].Message.Content, resp.StatusCode(), nil
}

func errorMessage(resp *resty.Response) string {
	if apiErr, ok := resp.Error().(*openai.ErrorResponse); ok && apiErr != nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if body := strings.TrimSpace(resp.String()); body != "" {
		return body
	}
	return resp.Status()
}
