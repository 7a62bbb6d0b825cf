package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIEndpoint = "https://api.openai.com/v1/moderations"

// Result is the classifier's verdict for one input.
type Result struct {
	Flagged    bool               `json:"flagged"`
	Categories map[string]float64 `json:"categories"`
}

type Client interface {
	Moderate(ctx context.Context, texts []string) ([]Result, error)
}

// OpenAI calls the OpenAI moderation endpoint.
type OpenAI struct {
	APIKey   string
	Model    string
	Endpoint string
	HTTP     *http.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		APIKey:   apiKey,
		Model:    "omni-moderation-latest",
		Endpoint: openAIEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

type openAIRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAI) Moderate(ctx context.Context, texts []string) ([]Result, error) {
	body, err := json.Marshal(openAIRequest{Model: c.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out openAIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return nil, fmt.Errorf("moderation api error (status %d): %s", resp.StatusCode, msg)
	}

	results := make([]Result, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, Result{Flagged: r.Flagged, Categories: r.CategoryScores})
	}
	return results, nil
}
