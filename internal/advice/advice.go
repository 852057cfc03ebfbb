// Package advice asks a hosted language model for maintenance suggestions
// based on a vehicle's recorded history.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	requestTimeout = 45 * time.Second

	systemPrompt = "You are an experienced car mechanic. Based on the vehicle facts " +
		"below, give short practical maintenance advice: what to check soon, what " +
		"expenses look unusual, and what the owner should plan for. Answer in plain " +
		"text, at most six sentences."
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("advice is not configured")

// Client calls a Gemini-style generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logrus.Entry
}

// NewClient builds an advice client. An empty API key yields a client
// whose Advise always returns ErrDisabled.
func NewClient(baseURL, apiKey, model string, log *logrus.Entry) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

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
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Advise sends the vehicle facts and returns the model's suggestion.
func (c *Client) Advise(ctx context.Context, facts string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: systemPrompt + "\n\n" + facts}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("advice request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.WithField("status", resp.StatusCode).Warn("advice backend rejected request")
		return "", fmt.Errorf("advice backend returned status %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("advice response decode failed: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("advice backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("advice backend returned no candidates")
	}

	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String()), nil
}
