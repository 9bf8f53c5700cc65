package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/koscakluka/kurt/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

var _ llms.Generator = (*Client)(nil)

// Client generates replies with the Gemini API.
type Client struct {
	client *genai.Client
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
			o.model = strings.TrimPrefix(model, "models/")
		}
	}
}

// WithBaseURL points the client at a different API host, mostly useful for
// tests and proxies.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// NewClient creates a Gemini client. The API key defaults to GEMINI_API_KEY,
// falling back to GOOGLE_API_KEY.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	options := clientOptions{
		model:      DefaultModel,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	options.apiKey = os.Getenv("GEMINI_API_KEY")
	if options.apiKey == "" {
		options.apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not found")
	}

	config := &genai.ClientConfig{
		APIKey:     options.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: options.httpClient,
	}
	if options.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: options.baseURL}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: options.model}, nil
}

func (c *Client) Model() string { return c.model }

// Generate sends prompt as a single user turn and returns the joined text
// of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate content")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", "gemini"),
		attribute.String("llm.model", c.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	)

	reply, err := c.generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return reply, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", llms.NewUnknownError(fmt.Errorf("no candidates"))
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", llms.NewUnknownError(fmt.Errorf("empty candidate, finish reason %q", candidate.FinishReason))
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", llms.NewUnknownError(fmt.Errorf("empty reply, finish reason %q", candidate.FinishReason))
	}
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		logger.WarnContext(ctx, "gemini reply truncated at max tokens", "model", c.model)
	}
	return reply, nil
}

func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return llms.NewUnknownError(err)
	}

	if code, ok := httpStatusOf(err); ok {
		switch {
		case code == http.StatusTooManyRequests:
			return llms.NewQuotaError(err)
		case code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
			return llms.NewNetworkError(err)
		default:
			return llms.NewUnknownError(err)
		}
	}

	if llms.IsTransportError(err) {
		return llms.NewNetworkError(err)
	}
	return llms.NewUnknownError(err)
}

// httpStatusOf reads the status genai reports as an APIError value.
func httpStatusOf(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == "RESOURCE_EXHAUSTED" {
			return http.StatusTooManyRequests, true
		}
		return apiErr.Code, true
	}
	return 0, false
}
