package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/pkg/logger"
)

// BedrockClient is a Completer backed by AWS Bedrock (Claude).
// All generation traffic stays within AWS.
type BedrockClient struct {
	client   *bedrockruntime.Client
	modelID  string
	region   string
	defaults config.BedrockConfig
}

// bedrockMessage is a message in the Anthropic messages format.
type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
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

// NewBedrockClient creates a Bedrock-backed completer using the default
// AWS credential chain.
func NewBedrockClient(ctx context.Context, cfg config.BedrockConfig) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	c := &BedrockClient{
		client:   bedrockruntime.NewFromConfig(awsCfg),
		modelID:  cfg.ModelID,
		region:   cfg.Region,
		defaults: cfg,
	}
	logger.Info("bedrock completer initialized", "model", c.modelID, "region", c.region)
	return c, nil
}

// Complete sends a single-turn prompt and returns the text response.
// Provider failures are classified transient or permanent for the
// caller's retry policy.
func (b *BedrockClient) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	if p.MaxTokens <= 0 {
		p.MaxTokens = b.defaults.MaxTokens
	}
	if p.Temperature <= 0 {
		p.Temperature = b.defaults.Temperature
	}

	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        p.MaxTokens,
		Temperature:      p.Temperature,
		Messages: []bedrockMessage{{
			Role:    "user",
			Content: []bedrockContentBlock{{Type: "text", Text: prompt}},
		}},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", classify(fmt.Errorf("bedrock invoke: %w", err))
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		// A garbled body is worth another attempt.
		return "", MarkTransient(fmt.Errorf("parse bedrock response: %w", err))
	}

	var text string
	for _, content := range response.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	if text == "" {
		return "", MarkTransient(fmt.Errorf("bedrock returned empty completion (stop_reason=%s)", response.StopReason))
	}

	logger.Debug("bedrock completion",
		"in_tokens", response.Usage.InputTokens,
		"out_tokens", response.Usage.OutputTokens)
	return text, nil
}
