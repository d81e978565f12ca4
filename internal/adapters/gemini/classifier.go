package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier is an implementation of the Predictor interface using Google Gemini
type Classifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
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

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Classifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Classifier{
		client:        client,
		model:         model,
		modelName:     modelName,
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
	}, nil
}

// Close closes the Gemini client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Predict classifies text into a raw label
func (c *Classifier) Predict(ctx context.Context, text string) (core.Label, error) {
	processed := c.textProcessor.ProcessText(text, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText.WriteString(string(textPart))
		}
	}

	parsed, err := parseLabelResponse(responseText.String())
	if err != nil {
		return "", err
	}

	label := core.Label(strings.ToLower(strings.TrimSpace(parsed.Label)))
	c.logger.Debug("Gemini classification",
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
