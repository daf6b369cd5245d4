// Package narrative turns analytics prompts into prose using a Claude model
// on AWS Bedrock. All data stays within AWS.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const anthropicVersion = "bedrock-2023-05-31"

// Invoker is the subset of the Bedrock runtime client used here.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Message is one turn in the Anthropic messages format.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one piece of message content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Request is the InvokeModel body for Anthropic models.
type Request struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature,omitempty"`
}

// Response is the InvokeModel reply for Anthropic models.
type Response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// BedrockNarrator implements analytics.Narrator.
type BedrockNarrator struct {
	client    Invoker
	modelID   string
	maxTokens int
	timeout   time.Duration
}

// NewBedrockNarrator creates a narrator for the given model.
func NewBedrockNarrator(client Invoker, modelID string, maxTokens int, timeout time.Duration) *BedrockNarrator {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	return &BedrockNarrator{client: client, modelID: modelID, maxTokens: maxTokens, timeout: timeout}
}

// NewFromConfig builds a narrator with a real Bedrock runtime client.
func NewFromConfig(cfg aws.Config, modelID string, maxTokens int, timeout time.Duration) *BedrockNarrator {
	log.Printf("[narrative] Bedrock narrator using model=%s region=%s", modelID, cfg.Region)
	return NewBedrockNarrator(bedrockruntime.NewFromConfig(cfg), modelID, maxTokens, timeout)
}

// Narrate sends prompt as a single user turn and returns the concatenated
// text blocks of the reply.
func (n *BedrockNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	body, err := json.Marshal(Request{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        n.maxTokens,
		Messages: []Message{{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: prompt}},
		}},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	output, err := n.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(n.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke %s: %w", n.modelID, err)
	}

	var resp Response
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("parse bedrock response: %w", err)
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("bedrock returned no text content")
	}

	log.Printf("[narrative] summary generated (in: %d tokens, out: %d tokens)",
		resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return text, nil
}
