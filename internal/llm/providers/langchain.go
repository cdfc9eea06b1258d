package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/crucible-sec/crucible/internal/llm"
)

// Config holds provider construction settings.
type Config struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	ServerURL string `yaml:"server_url"` // ollama only
}

// LangchainProvider adapts a langchaingo model to the Generator interface.
type LangchainProvider struct {
	name   string
	model  string
	client llms.Model
}

// NewOpenAI creates a Generator backed by OpenAI chat models.
func NewOpenAI(cfg Config) (*LangchainProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.TranslateError("openai", fmt.Errorf("api key not configured"))
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}

	return &LangchainProvider{name: "openai", model: cfg.Model, client: client}, nil
}

// NewAnthropic creates a Generator backed by Anthropic models.
func NewAnthropic(cfg Config) (*LangchainProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.TranslateError("anthropic", fmt.Errorf("api key not configured"))
	}

	opts := []anthropic.Option{anthropic.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}

	return &LangchainProvider{name: "anthropic", model: cfg.Model, client: client}, nil
}

// NewOllama creates a Generator backed by a local ollama server.
func NewOllama(cfg Config) (*LangchainProvider, error) {
	opts := []ollama.Option{}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	return &LangchainProvider{name: "ollama", model: cfg.Model, client: client}, nil
}

// Name returns the provider name.
func (p *LangchainProvider) Name() string {
	return p.name
}

// Generate sends a generation request through langchaingo.
func (p *LangchainProvider) Generate(ctx context.Context, req llm.GenerationRequest) (*llm.Completion, error) {
	if err := req.Validate(); err != nil {
		return nil, llm.NewInvalidRequestError(err.Error())
	}

	resp, err := p.client.GenerateContent(ctx, toContentMessages(req.Messages), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError(p.name, err)
	}

	return fromContentResponse(resp, p.model), nil
}

// toContentMessages converts Crucible messages to langchaingo MessageContent.
func toContentMessages(messages []llm.Message) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages))

	for _, msg := range messages {
		var role schema.ChatMessageType
		switch msg.Role {
		case llm.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}

		result = append(result, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}

	return result
}

// fromContentResponse converts a langchaingo response to a Completion.
func fromContentResponse(resp *llms.ContentResponse, model string) *llm.Completion {
	completion := &llm.Completion{Model: model}
	if resp == nil || len(resp.Choices) == 0 {
		return completion
	}

	completion.Content = resp.Choices[0].Content
	return completion
}

// buildCallOptions converts a generation request to langchaingo call options.
func buildCallOptions(req llm.GenerationRequest) []llms.CallOption {
	callOpts := make([]llms.CallOption, 0, 3)

	if req.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	return callOpts
}
