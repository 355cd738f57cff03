package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"causaltrace/internal/llm"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const defaultCallTimeout = 60 * time.Second

// contentGenerator is the subset of *genai.Models the adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer on top of the Gemini API.
type Client struct {
	gen     contentGenerator
	timeout time.Duration
}

// New creates a client bound to a single API key.
func New(ctx context.Context, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithGenerator(c.Models, timeout), nil
}

func newWithGenerator(gen contentGenerator, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Client{gen: gen, timeout: timeout}
}

// Complete sends req as one GenerateContent call. Every failure, including a
// panic inside the SDK, is returned as a failed llm.Result.
func (c *Client) Complete(ctx context.Context, req llm.Request) (res llm.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("model", req.Model).Msg("gemini call panicked")
			res = llm.Failure(llm.CategoryUnknown, fmt.Sprintf("provider panic: %v", r))
		}
	}()

	if req.Model == "" {
		return llm.Failure(llm.CategoryInvalidRequest, "model is required")
	}
	contents, err := buildContents(req)
	if err != nil {
		return llm.Failure(llm.CategoryInvalidRequest, err.Error())
	}

	log.Info().Str("model", req.Model).Int("parts", countParts(contents)).Msg("sending request")

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()
	resp, err := c.gen.GenerateContent(ctx, req.Model, contents, buildConfig(req))
	if err != nil {
		e := classifyError(err)
		log.Warn().Str("model", req.Model).Str("category", string(e.Category)).Msg("API call failed: " + e.Message)
		return llm.Result{Err: e}
	}
	if resp == nil {
		return llm.Failure(llm.CategoryEmptyResponse, "empty response from model")
	}
	text := resp.Text()
	if text == "" {
		return llm.Failure(llm.CategoryEmptyResponse, "model returned no text")
	}

	ev := log.Info().Str("model", req.Model).Int("chars", len(text))
	if u := resp.UsageMetadata; u != nil {
		ev = ev.Int32("prompt_tokens", u.PromptTokenCount).Int32("candidate_tokens", u.CandidatesTokenCount)
	}
	ev.Msg("response received")
	return llm.Success(text)
}

func buildConfig(req llm.Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
}

func buildContents(req llm.Request) ([]*genai.Content, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("request has no messages")
	}
	out := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		parts := make([]*genai.Part, 0, len(msg.Content))
		for i, block := range msg.Content {
			switch block.Type {
			case llm.BlockText:
				parts = append(parts, &genai.Part{Text: block.Text})
			case llm.BlockImage:
				if block.Source == nil {
					return nil, fmt.Errorf("image block %d has no source", i)
				}
				data, err := base64.StdEncoding.DecodeString(block.Source.Data)
				if err != nil {
					return nil, fmt.Errorf("image block %d: invalid base64: %w", i, err)
				}
				if len(data) == 0 {
					continue
				}
				parts = append(parts, genai.NewPartFromBytes(data, block.Source.MediaType))
			default:
				return nil, fmt.Errorf("unsupported content block type %q", block.Type)
			}
		}
		role := msg.Role
		if role == "" {
			role = llm.RoleUser
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}
	return out, nil
}

func countParts(contents []*genai.Content) int {
	n := 0
	for _, c := range contents {
		n += len(c.Parts)
	}
	return n
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// apiError extracts a genai.APIError from err's chain. The SDK returns it
// by value; a pointer is accepted as well.
func apiError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}
