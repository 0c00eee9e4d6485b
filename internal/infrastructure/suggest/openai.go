package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAI ходит в любой chat-completions-совместимый API (OpenAI,
// OpenRouter, vLLM, Ollama). Стриминг не нужен: подсказка отдается
// целиком одним ответом.
type OpenAI struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewOpenAI(endpoint, apiKey, model string) *OpenAI {
	return &OpenAI{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete отправляет system-промпт и вопрос, возвращает текст ответа.
func (p *OpenAI) Complete(ctx context.Context, system, query string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: query},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("suggest: empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

// readAPIError разбирает общий для OpenAI-совместимых API формат ошибки
// {"error":{"type":"...","message":"..."}}.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return fmt.Errorf("suggest: HTTP %d: %s", resp.StatusCode, wireError.Error.Message)
	}
	return fmt.Errorf("suggest: HTTP %d", resp.StatusCode)
}
