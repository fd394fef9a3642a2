// Package visionai реализует клиент внешнего vision-сервиса, распознающего
// болезни растений по фотографии листа через OpenAI-совместимый API.
package visionai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/magabrotheeeer/leafcare-backend/internal/config"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

const diagnosisPrompt = `You are an expert plant pathologist. Analyze this plant leaf image and respond ONLY with a JSON object, no other text:
{
  "disease_detected": true/false,
  "disease_name": "name of the disease or Healthy",
  "disease_type": "fungal/bacterial/viral/nutritional/pest/none",
  "severity": "mild/moderate/severe/none",
  "confidence": 0.0-1.0,
  "symptoms": ["visible symptom 1", "visible symptom 2"],
  "possible_causes": ["cause 1", "cause 2"],
  "treatment": ["treatment recommendation 1", "treatment recommendation 2"],
  "description": "brief description of the diagnosis"
}`

type Client struct {
	api   *openai.Client
	model string
}

// NewClient создаёт клиент vision-сервиса с OpenAI-совместимым базовым URL.
func NewClient(cfg config.VisionAPI) *Client {
	clientConfig := openai.DefaultConfig(cfg.VisionAPIKey)
	clientConfig.BaseURL = cfg.VisionBaseURL
	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: cfg.VisionModel,
	}
}

// Model возвращает название используемой vision-модели.
func (c *Client) Model() string {
	return c.model
}

// Diagnose отправляет изображение листа в vision-модель и возвращает
// структурированный диагноз вместе с расходом токенов.
func (c *Client) Diagnose(ctx context.Context, imageBase64 string) (*models.Diagnosis, error) {
	const op = "visionai.Diagnose"

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: diagnosisPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + imageBase64,
						},
					},
				},
			},
		},
		MaxTokens:   1024,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: empty response from vision model", op)
	}

	var diagnosis models.Diagnosis
	content := stripJSONFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &diagnosis); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	diagnosis.TokenUsage = models.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return &diagnosis, nil
}

// stripJSONFences убирает обрамление ```json ... ```, которое модели
// иногда добавляют вокруг ответа.
func stripJSONFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
