package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/koscakluka/kurt/core/llms"
	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultModel = goopenai.GPT4oMini

var _ llms.Generator = (*Client)(nil)

// Client generates replies with OpenAI chat completions.
type Client struct {
	client *goopenai.Client
	model  string
}

type clientOptions struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*clientOptions)

func WithAPIKey(apiKey string) ClientOption {
	return func(o *clientOptions) { o.apiKey = apiKey }
}

func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL targets any OpenAI compatible endpoint. The URL must include
// the API version path, e.g. https://api.openai.com/v1.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = strings.TrimSuffix(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// NewClient creates an OpenAI client, reading OPENAI_API_KEY unless an API
// key option is given.
func NewClient(opts ...ClientOption) (*Client, error) {
	options := clientOptions{
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		model:      DefaultModel,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf("openai api key not found")
	}

	config := goopenai.DefaultConfig(options.apiKey)
	config.HTTPClient = options.httpClient
	if options.baseURL != "" {
		config.BaseURL = options.baseURL
	}

	return &Client{client: goopenai.NewClientWithConfig(config), model: options.model}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "create chat completion")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "openai"),
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		err = classifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if len(resp.Choices) == 0 {
		err := llms.NewUnknownError(fmt.Errorf("no choices"))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		err := llms.NewUnknownError(fmt.Errorf("empty reply, finish reason %q", resp.Choices[0].FinishReason))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.total_tokens", resp.Usage.TotalTokens))
	return reply, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return llms.NewUnknownError(err)
	}

	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		if apiErr.Type == "insufficient_quota" {
			return llms.NewQuotaError(err)
		}
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return llms.NewQuotaError(err)
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return llms.NewNetworkError(err)
	case status != 0:
		return llms.NewUnknownError(err)
	case llms.IsTransportError(err):
		return llms.NewNetworkError(err)
	default:
		return llms.NewUnknownError(err)
	}
}
