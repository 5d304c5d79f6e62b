package scorer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/resilience"
	"github.com/sells-group/lead-dashboard/pkg/anthropic"
	"github.com/sells-group/lead-dashboard/pkg/openai"
)

const (
	defaultTimeout     = 30 * time.Second
	promptTemperature  = 0.3
	defaultMaxTokens   = 1024
	defaultClaudeModel = "claude-haiku-4-5-20251001"
)

// Provider sends one system+user prompt to a language model and returns its
// raw text reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// RemoteScorer scores leads through a Provider. Each call is attempted once,
// bounded by a timeout, throttled, and guarded by a circuit breaker.
type RemoteScorer struct {
	provider Provider
	breaker  *resilience.Breaker
	limiter  *rate.Limiter
	timeout  time.Duration
}

// RemoteOption configures a RemoteScorer.
type RemoteOption func(*RemoteScorer)

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *RemoteScorer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *resilience.Breaker) RemoteOption {
	return func(r *RemoteScorer) {
		if b != nil {
			r.breaker = b
		}
	}
}

// WithRateLimit throttles provider calls to perSec with the given burst.
// A non-positive rate disables throttling.
func WithRateLimit(perSec float64, burst int) RemoteOption {
	return func(r *RemoteScorer) {
		if perSec <= 0 {
			r.limiter = nil
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSec), max(burst, 1))
	}
}

// NewRemoteScorer creates a RemoteScorer for p.
func NewRemoteScorer(p Provider, opts ...RemoteOption) *RemoteScorer {
	r := &RemoteScorer{
		provider: p,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	if r.breaker == nil {
		r.breaker = resilience.NewBreaker(resilience.BreakerConfig{Name: p.Name()})
	}
	return r
}

// Score implements Scorer. Errors are returned as-is; callers decide on the
// fallback.
func (r *RemoteScorer) Score(ctx context.Context, lead model.Lead) (model.LeadAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return model.LeadAnalysis{}, eris.Wrap(err, "scorer: rate limit wait")
		}
	}

	reply, err := resilience.Call(ctx, r.breaker, func(ctx context.Context) (string, error) {
		return r.provider.Complete(ctx, SystemPrompt, BuildPrompt(lead))
	})
	if err != nil {
		return model.LeadAnalysis{}, eris.Wrapf(err, "scorer: %s analyze lead %d", r.provider.Name(), lead.ID)
	}
	return ParseAnalysis(lead.ID, reply)
}

// AnthropicProvider completes prompts with Claude.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicProvider wraps an Anthropic client. Empty model and zero
// maxTokens take defaults.
func NewAnthropicProvider(client anthropic.Client, model string, maxTokens int64) *AnthropicProvider {
	if model == "" {
		model = defaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicProvider{client: client, model: model, maxTokens: maxTokens}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete implements Provider.
func (p *AnthropicProvider) Complete(ctx context.Context, system, user string) (string, error) {
	temp := promptTemperature
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(p.model, "analyze_lead")
	return resp.Text(), nil
}

// OpenAIProvider completes prompts with an OpenAI chat model in JSON mode.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider wraps an OpenAI client. An empty model uses the client default.
func NewOpenAIProvider(client openai.Client, model string) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.ChatCompletion(ctx, openai.ChatRequest{
		Model:       p.model,
		System:      system,
		User:        user,
		Temperature: promptTemperature,
		JSON:        true,
	})
	if err != nil {
		return "", err
	}
	zap.L().Debug("openai usage",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
	)
	return resp.Content, nil
}
