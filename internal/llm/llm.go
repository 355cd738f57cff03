// Package llm defines the provider-neutral request payload sent for one rubric
// question and the tagged result every provider adapter returns.
package llm

import (
	"context"

	"causaltrace/internal/frames"
)

const (
	RoleUser = "user"

	BlockText  = "text"
	BlockImage = "image"

	SourceBase64 = "base64"
)

// Request is one outbound call: a model, an output token cap and the messages.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// Message is one conversation turn made of ordered content blocks.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is either a text block or an inlined image block.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// ImageSource carries base64 image bytes and their media type.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Completer performs exactly one synchronous completion call.
// Implementations never return provider failures any other way than Result.Err.
type Completer interface {
	Complete(ctx context.Context, req Request) Result
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) Result

func (f CompleterFunc) Complete(ctx context.Context, req Request) Result {
	return f(ctx, req)
}

// Assemble builds the single user turn: the prompt text first, then one image
// block per frame in frame order. An empty frame list gives a text-only message.
func Assemble(prompt string, fs []frames.Frame) Message {
	blocks := make([]ContentBlock, 0, len(fs)+1)
	blocks = append(blocks, ContentBlock{Type: BlockText, Text: prompt})
	for _, f := range fs {
		mediaType := f.MediaType
		if mediaType == "" {
			mediaType = frames.MediaType(f.Filename)
		}
		blocks = append(blocks, ContentBlock{
			Type: BlockImage,
			Source: &ImageSource{
				Type:      SourceBase64,
				MediaType: mediaType,
				Data:      f.Content,
			},
		})
	}
	return Message{Role: RoleUser, Content: blocks}
}

// NewRequest wraps msg into a request for model with the given output cap.
func NewRequest(model string, maxTokens int, msg Message) Request {
	return Request{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []Message{msg},
	}
}
