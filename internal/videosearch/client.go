// Package videosearch реализует клиент сервиса подбора обучающих видео
// по лечению обнаруженной болезни. Подбор видео не критичен для диагностики,
// поэтому ошибки этого клиента вызывающий код обрабатывает как деградацию.
package videosearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/config"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент сервиса поиска видео.
func NewClient(cfg config.VideoAPI) *Client {
	return &Client{
		apiKey:     cfg.VideoAPIKey,
		apiURL:     cfg.VideoBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type searchRequest struct {
	Model    string          `json:"model"`
	Messages []searchMessage `json:"messages"`
}

type searchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type searchResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FindVideos подбирает до трёх обучающих видео по названию болезни.
func (c *Client) FindVideos(ctx context.Context, diseaseName string) ([]models.Video, error) {
	const op = "videosearch.FindVideos"

	prompt := fmt.Sprintf(`Find 3 YouTube tutorial videos about treating "%s" in plants. `+
		`Respond ONLY with a JSON array: [{"title": "...", "url": "...", "channel": "..."}]`, diseaseName)

	body, err := json.Marshal(searchRequest{
		Model: "sonar",
		Messages: []searchMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", op, errors.New("unexpected status: "+resp.Status))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(searchResp.Choices) == 0 {
		return nil, fmt.Errorf("%s: empty response", op)
	}

	var videos []models.Video
	if err := json.Unmarshal([]byte(searchResp.Choices[0].Message.Content), &videos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(videos) > 3 {
		videos = videos[:3]
	}
	return videos, nil
}
