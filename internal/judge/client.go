package judge

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/imh0ng/open-machina/internal/observability"
	"github.com/imh0ng/open-machina/internal/types"
)

// Invoker issues one completion against a resolved judge runtime and returns
// the raw response text. The decision protocol owns prompt construction,
// parsing, and the single repair retry; the invoker is transport only.
type Invoker interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// InvokerFactory builds an Invoker for a resolved runtime. Factored out so
// tests can substitute a mock without touching the network.
type InvokerFactory func(runtime *Runtime) (Invoker, error)

// completionInvoker calls the judge over the OpenAI-compatible completions
// API. openai, openrouter, and xai all speak this dialect, which is why the
// endpoint map in endpoint.go can cover them with one client.
type completionInvoker struct {
	client      *openai.LLM
	model       string
	temperature float64
	maxTokens   int
}

// NewInvoker builds the production invoker for a resolved runtime.
func NewInvoker(runtime *Runtime) (Invoker, error) {
	client, err := openai.New(
		openai.WithToken(runtime.Token),
		openai.WithModel(runtime.Model),
		openai.WithBaseURL(runtime.APIURL),
	)
	if err != nil {
		return nil, types.WrapError(types.AUTONOMY_JUDGE_FAILED, "failed to construct judge client", err)
	}

	return &completionInvoker{
		client:      client,
		model:       runtime.Model,
		temperature: 0.2,
		maxTokens:   1024,
	}, nil
}

// Complete sends one completion and returns the assistant text verbatim.
// No internal retries: the decision protocol's schema-repair attempt is the
// only second call an arbitration round is allowed.
func (c *completionInvoker) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanJudgeComplete,
		attribute.String(observability.AttrJudgeModel, c.model))
	defer span.End()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := c.client.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", types.WrapError(types.AUTONOMY_JUDGE_FAILED, "judge completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", types.NewError(types.AUTONOMY_JUDGE_FAILED, "judge returned no choices")
	}

	return resp.Choices[0].Content, nil
}
