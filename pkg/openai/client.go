// Package openai performs JSON-mode chat completions against the OpenAI API.
package openai

import (
	"context"

	"github.com/rotisserie/eris"
	goopenai "github.com/sashabaranov/go-openai"
)

const defaultModel = goopenai.GPT4o

// Client performs chat completions.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a chat completion request.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float32
	// JSON asks the model for a single JSON object.
	JSON bool
}

// ChatResponse is the first choice of a completion.
type ChatResponse struct {
	ID               string
	Model            string
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Option configures the client.
type Option func(*sdkClient)

// WithBaseURL overrides the API base URL, e.g. for a compatible gateway.
func WithBaseURL(url string) Option {
	return func(c *sdkClient) {
		c.cfg.BaseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		c.model = model
	}
}

type sdkClient struct {
	cfg    goopenai.ClientConfig
	model  string
	client *goopenai.Client
}

// NewClient creates an OpenAI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &sdkClient{
		cfg:   goopenai.DefaultConfig(apiKey),
		model: defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	c.client = goopenai.NewClientWithConfig(c.cfg)
	return c
}

func (c *sdkClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var msgs []goopenai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.User})

	params := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.JSON {
		params.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "openai: chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: empty choices")
	}

	choice := resp.Choices[0]
	return &ChatResponse{
		ID:               resp.ID,
		Model:            resp.Model,
		Content:          choice.Message.Content,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
