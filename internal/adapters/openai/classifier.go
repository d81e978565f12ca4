package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/utils"
	"go.uber.org/zap"
)

// Classifier is an implementation of the Predictor interface using OpenAI
type Classifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// labelResponse is the structured response expected from the LLM
type labelResponse struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// NewClassifier creates a new OpenAI classifier
func NewClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are an email threat classifier. Classify the following text into exactly one of these labels: safe, phishing, scam, fraudulent, suspicious, spam.
Respond with a JSON object containing:
- label: string (one of the labels above)
- reason: string (brief explanation of the classification)

Text:
%s

Respond only with the JSON object and nothing else.`,
	}
}

// Predict classifies text into a raw label
func (c *Classifier) Predict(ctx context.Context, text string) (core.Label, error) {
	processed := c.textProcessor.ProcessText(text, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email threat classifier. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := parseLabelResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}

	label := core.Label(strings.ToLower(strings.TrimSpace(parsed.Label)))
	c.logger.Debug("OpenAI classification",
		zap.String("label", string(label)),
		zap.String("reason", parsed.Reason))

	return label, nil
}

// parseLabelResponse parses the LLM's JSON response, tolerating
// surrounding prose by extracting the outermost JSON object.
func parseLabelResponse(responseText string) (*labelResponse, error) {
	var parsed labelResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := strings.Index(responseText, "{")
	jsonEnd := strings.LastIndex(responseText, "}")
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}

	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}
