package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenRouter by default).
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// OpenAIOptions carries the optional attribution headers OpenRouter uses to
// identify the calling application.
type OpenAIOptions struct {
	Referer string
	Title   string
}

func NewOpenAIClient(apiKey, baseURL, model string, opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": opts.Referer,
				"X-Title":      opts.Title,
			},
		},
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &CallError{Kind: KindMalformedResponse, StatusCode: http.StatusOK, Body: "no choices in response"}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &CallError{Kind: KindMalformedResponse, StatusCode: http.StatusOK, Body: "empty message content"}
	}
	return content, nil
}

func classifyOpenAIError(err error) *CallError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &CallError{Kind: KindProviderError, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &CallError{Kind: KindProviderError, StatusCode: reqErr.HTTPStatusCode, Body: body, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return transportError(err)
	}
	if isDecodeError(err) {
		return &CallError{Kind: KindMalformedResponse, StatusCode: http.StatusOK, Err: err}
	}
	return transportError(err)
}

// headerTransport adds fixed headers to every outgoing request. Empty values
// are not sent.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
