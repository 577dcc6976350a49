// Package openai provides an OpenAI chat-completion Generator implementation.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-storycheck-go/llm"
)

// Verify that Generator implements the llm.Generator interface.
var _ llm.Generator = (*Generator)(nil)

// Generation defaults. Verification wants deterministic judgments, so the
// temperature defaults to zero.
const (
	// DefaultModel is the default judgment model.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.0
	// DefaultMaxTokens bounds the model's reasoning plus the two mandatory
	// trailing lines.
	DefaultMaxTokens = 1536
)

// Generator implements llm.Generator using the OpenAI chat completions API.
type Generator struct {
	client         openai.Client
	model          string
	temperature    float64
	maxTokens      int
	apiKey         string
	baseURL        string
	requestOptions []option.RequestOption
}

// Option represents a functional option for configuring the Generator.
type Option func(*Generator)

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(g *Generator) {
		g.temperature = temperature
	}
}

// WithMaxTokens sets the maximum number of completion tokens.
func WithMaxTokens(maxTokens int) Option {
	return func(g *Generator) {
		if maxTokens > 0 {
			g.maxTokens = maxTokens
		}
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, the OPENAI_API_KEY environment variable is used.
func WithAPIKey(apiKey string) Option {
	return func(g *Generator) {
		g.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) {
		g.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for the OpenAI client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(g *Generator) {
		g.requestOptions = append(g.requestOptions, opts...)
	}
}

// New creates a new OpenAI generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		model:       DefaultModel,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(g)
	}

	var clientOpts []option.RequestOption
	if g.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(g.apiKey))
	}
	if g.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(g.baseURL))
	}
	g.client = openai.NewClient(clientOpts...)

	return g
}

// Generate implements the llm.Generator interface. A completed call whose
// response carries no text returns ("", nil): the call itself worked, the
// model just produced nothing.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	request := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(g.temperature),
		MaxCompletionTokens: openai.Int(int64(g.maxTokens)),
	}

	response, err := g.client.Chat.Completions.New(ctx, request, g.requestOptions...)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
