package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/civic-tools/civiceye/pkg/models/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.5-flash-preview-09-2025"

	noDescription = "No description provided."
)

const systemPrompt = `You are an expert Civic Infrastructure Analyst. Analyze the provided image of a city issue.
Identify:
1. Category (Pothole, Garbage Overflow, Broken Streetlight, Water Leakage, Unsafe Area, Other).
2. Severity (Low, Medium, High, Critical).
3. Urgency Score (1-10, where 10 is immediate danger to life).
4. Brief technical summary.

Return ONLY a JSON object:
{"category": "...", "severity": "...", "urgency_score": 8, "summary": "..."}`

// DefaultSchedule is the fixed inter-attempt backoff sequence. One attempt is
// made per entry.
var DefaultSchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
	8 * time.Second,
	16 * time.Second,
}

// Analyzer produces a classification for one submitted image. Implementations
// never fail: on persistent trouble they return a usable default instead.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, description string) domain.Classification
}

// Config carries everything the client needs; there is no package-level state.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Schedule   []time.Duration
	HTTPClient *http.Client
}

type Client struct {
	endpoint string
	apiKey   string
	model    string
	schedule []time.Duration
	http     *http.Client

	// sleep waits for d or until ctx is done; returns false on cancellation.
	// Overridable so tests can observe the schedule without waiting it out.
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewClient(cfg Config) *Client {
	c := &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		schedule: cfg.Schedule,
		http:     cfg.HTTPClient,
		sleep:    sleepContext,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if len(c.schedule) == 0 {
		c.schedule = DefaultSchedule
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// Fallback is the classification substituted when every attempt fails.
func Fallback() domain.Classification {
	return domain.Classification{
		Category:     domain.CategoryUnidentified,
		Severity:     domain.SeverityMedium,
		UrgencyScore: 5,
		Summary:      "AI analysis failed.",
	}
}

// Analyze classifies the image, retrying over the configured schedule.
// Each entry yields one attempt followed by a wait of that duration, so a
// call that succeeds on attempt k has waited through the first k-1 entries.
// Attempt failures are swallowed; exhaustion and cancellation both degrade
// to Fallback. Analyze never returns an error.
func (c *Client) Analyze(ctx context.Context, image []byte, description string) domain.Classification {
	logger := zerolog.Ctx(ctx)

	payload, err := c.buildPayload(image, description)
	if err != nil {
		logger.Error().Err(err).Msg("analysis request could not be built")
		return Fallback()
	}

	for i, delay := range c.schedule {
		cls, err := c.attempt(ctx, payload)
		if err == nil {
			return cls
		}
		logger.Debug().Err(err).Int("attempt", i+1).Msg("analysis attempt failed")

		if !c.sleep(ctx, delay) {
			logger.Warn().Int("attempts", i+1).Msg("analysis abandoned: context cancelled")
			return Fallback()
		}
	}

	logger.Warn().Int("attempts", len(c.schedule)).Msg("analysis exhausted all attempts, using default classification")
	return Fallback()
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction content          `json:"systemInstruction"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type classificationJSON struct {
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	UrgencyScore int    `json:"urgency_score"`
	Summary      string `json:"summary"`
}

func (c *Client) buildPayload(image []byte, description string) ([]byte, error) {
	if description == "" {
		description = noDescription
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []contentPart{
				{Text: "User reported: " + description},
				{InlineData: &inlineData{
					MimeType: mimetype.Detect(image).String(),
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		SystemInstruction: content{Parts: []contentPart{{Text: systemPrompt}}},
		GenerationConfig:  generationConfig{ResponseMimeType: "application/json"},
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return payload, nil
}

func (c *Client) requestURL() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.endpoint, c.model, url.QueryEscape(c.apiKey))
}

// attempt performs a single call. Any transport failure, a non-200 status, a
// body outside the expected nesting, or a classification outside the fixed
// schema all count as one failed attempt.
func (c *Client) attempt(ctx context.Context, payload []byte) (domain.Classification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), bytes.NewReader(payload))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("call inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return domain.Classification{}, fmt.Errorf("response has no candidate content")
	}

	var raw classificationJSON
	if err := json.Unmarshal([]byte(body.Candidates[0].Content.Parts[0].Text), &raw); err != nil {
		return domain.Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	cls := domain.Classification{
		Category:     domain.Category(raw.Category),
		Severity:     domain.Severity(raw.Severity),
		UrgencyScore: raw.UrgencyScore,
		Summary:      raw.Summary,
	}
	if err := cls.Validate(); err != nil {
		return domain.Classification{}, fmt.Errorf("classification failed schema validation: %w", err)
	}
	return cls, nil
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
