// Package gemini submits caption text to the Gemini text policy classifier
// over its generateContent REST endpoint and parses the verdict.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/happyscroll/verdict-api/internal/domain/model"
	"github.com/happyscroll/verdict-api/internal/domain/repository"
	"github.com/happyscroll/verdict-api/internal/infrastructure/metrics"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	requestTimeout = 30 * time.Second
)

// Client implements repository.TranscriptClassifier against the Gemini API.
// The transport does not retry; a failed call surfaces as a branch error.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewClient creates a Gemini classifier client.
func NewClient(apiKey, modelName string) *Client {
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   modelName,
	}
}

// generateContent request/response wire shapes, reduced to what we consume.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits the transcript with metadata context and parses the
// VERDICT/EXPLANATION response into a safety bit and reason.
func (c *Client) Analyze(ctx context.Context, transcript string, meta *model.VideoMetadata) (bool, string, error) {
	text, err := c.generate(ctx, buildPrompt(transcript, meta))
	if err != nil {
		return false, "", err
	}
	return parseVerdict(text)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamGemini, metrics.UpstreamStatusError).Inc()
		return "", fmt.Errorf("%w: %v", repository.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamGemini, metrics.UpstreamStatusError).Inc()
		return "", fmt.Errorf("%w: read response: %v", repository.ErrClassifierUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamGemini, metrics.UpstreamStatusError).Inc()
		if resp.StatusCode == http.StatusBadRequest {
			return "", fmt.Errorf("%w: status %d: %s", repository.ErrClassifierRejected, resp.StatusCode, truncateBody(raw))
		}
		return "", fmt.Errorf("%w: status %d: %s", repository.ErrClassifierUnavailable, resp.StatusCode, truncateBody(raw))
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.UpstreamGemini, metrics.UpstreamStatusSuccess).Inc()

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", repository.ErrClassifierUnparseable, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", repository.ErrClassifierUnparseable)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
