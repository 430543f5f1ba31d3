package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"optibuy/pkg/apperr"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.5-flash"
	defaultHTTPTimeout = 30 * time.Second
)

// Client talks to the Gemini generateContent API. The analysis workflow only
// needs one capability: send a prompt, get back a JSON document constrained by
// a response schema.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   interface{} `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewClient builds a client against a specific endpoint — used by tests.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

// NewClientFromEnv reads GEMINI_API_KEY (required), GEMINI_MODEL and
// GEMINI_API_BASE (optional).
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	return NewClient(apiKey, os.Getenv("GEMINI_MODEL"), os.Getenv("GEMINI_API_BASE")), nil
}

// GenerateJSON sends the prompt with a strict response schema and returns the
// raw JSON text produced by the model. Transport and HTTP failures come back
// as Service errors; an empty body is a distinct Service error so callers can
// tell "collaborator down" apart from "collaborator answered nothing".
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema interface{}) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindService, err, "analysis collaborator unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", apperr.Service("analysis collaborator returned status %d: %s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.Wrap(apperr.KindService, err, "failed to decode collaborator response")
	}

	text := out.firstText()
	if text == "" {
		return "", apperr.Service("analysis collaborator returned an empty response")
	}
	return text, nil
}

func (r *generateResponse) firstText() string {
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}
