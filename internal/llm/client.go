package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jonathan/founder-outreach/internal/metrics"
)

// ErrUnavailable is returned by every call when no credential is configured.
var ErrUnavailable = errors.New("generative capability unavailable")

// Error represents a failed call to the generative capability.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Request is one generation call.
type Request struct {
	Prompt string
	Tier   ModelTier
	// Grounded enables the search grounding tool.
	Grounded bool
	// JSON asks for an application/json response. Ignored when Grounded is set,
	// since the API does not combine tools with a response MIME type.
	JSON bool
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate returns the text of the first candidate
	Generate(ctx context.Context, req Request) (string, error)
	// Available reports whether calls can succeed at all
	Available() bool
}

// NewClient creates a Gemini client, or an Unavailable client when apiKey is empty.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Unavailable{}, nil
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// Unavailable is the Client used when no credential is configured.
type Unavailable struct{}

// Generate always returns ErrUnavailable.
func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// Available always returns false.
func (Unavailable) Available() bool { return false }

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Available returns true.
func (c *GeminiClient) Available() bool { return true }

// Generate generates text content for the request.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return "", &Error{Message: fmt.Sprintf("no model configured for tier %s", req.Tier)}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.config.Temperature),
	}
	switch {
	case req.Grounded:
		genConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case req.JSON:
		genConfig.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), genConfig)
	if err != nil {
		metrics.IncrementCapabilityCall("gemini", "error")
		return "", &Error{Message: "failed to generate content", Cause: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.IncrementCapabilityCall("gemini", "empty")
		return "", &Error{Message: "no text in response"}
	}

	metrics.IncrementCapabilityCall("gemini", "ok")
	if req.JSON {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}
