// Package openai provides a script generation engine backed by the OpenAI
// Chat Completions API. It renders the generation request as a screenwriter
// prompt, asks for a strict JSON reply and maps it into core.GenerateResult.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/engine"
)

// Options configure the OpenAI engine.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Engine wraps the OpenAI Chat Completions API behind the core.Engine interface.
type Engine struct {
	client *openai.Client
	opts   Options
}

// NewEngine creates a new OpenAI engine using the official client
func NewEngine(optFns ...func(o *Options)) *Engine {
	client := openai.NewClient()
	return NewEngineFromClient(&client, optFns...)
}

// NewEngineFromClient creates a new OpenAI engine from an existing client
func NewEngineFromClient(client *openai.Client, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{client: client, opts: opts}
}

// Generate runs a single non-streaming completion and parses the JSON reply.
// Provider failures come back as EngineError; rate limits and server errors
// are marked retryable so the runner's backoff loop can take another attempt.
func (e *Engine) Generate(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: e.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(engine.SystemPrompt),
			openai.UserMessage(engine.UserPrompt(req)),
		},
		Temperature:         openai.Float(e.opts.Temperature),
		MaxCompletionTokens: openai.Int(e.opts.MaxCompletionTokens),
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, core.NewEngineError(fmt.Errorf("openai api error: %w", err), retryable(err))
	}
	if len(resp.Choices) == 0 {
		return nil, core.NewEngineError(fmt.Errorf("no choices returned"), true)
	}

	return engine.ParseResult(resp.Choices[0].Message.Content)
}

// retryable reports whether an API failure is worth another attempt.
// 429 and 5xx responses are transient; everything else (bad request,
// auth failure) will fail the same way again.
func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}

var _ core.Engine = (*Engine)(nil)
