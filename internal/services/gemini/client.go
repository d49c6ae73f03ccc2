package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scribe/internal/services"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com"
	defaultModel          = "gemini-2.5-pro"
	defaultHTTPTimeout    = 300 * time.Second
	defaultPollInterval   = 1 * time.Second
	defaultPollWait       = 60 * time.Second
	defaultTemperature    = 0.2
	defaultMaxOutputToken = 65535
)

// Config captures the runtime settings required to talk to the
// generative language API.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	TimeoutSeconds    int
	UploadPollSeconds int
	UploadWaitSeconds int
	Temperature       float64
	MaxOutputTokens   int
}

// Client wraps the generateContent and file upload endpoints of the
// generative language REST API. A single call maps to a single HTTP
// round trip; retry policy belongs to the caller.
type Client struct {
	cfg        Config
	httpClient *http.Client

	pollInterval time.Duration
	pollWait     time.Duration
	sleeper      func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how upload poll sleeps are performed (useful
// for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:            strings.TrimSpace(cfg.APIKey),
			BaseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:             strings.TrimSpace(cfg.Model),
			TimeoutSeconds:    cfg.TimeoutSeconds,
			UploadPollSeconds: cfg.UploadPollSeconds,
			UploadWaitSeconds: cfg.UploadWaitSeconds,
			Temperature:       cfg.Temperature,
			MaxOutputTokens:   cfg.MaxOutputTokens,
		},
		httpClient:   &http.Client{Timeout: timeout},
		pollInterval: defaultPollInterval,
		pollWait:     defaultPollWait,
	}
	if cfg.UploadPollSeconds > 0 {
		client.pollInterval = time.Duration(cfg.UploadPollSeconds) * time.Second
	}
	if cfg.UploadWaitSeconds > 0 {
		client.pollWait = time.Duration(cfg.UploadWaitSeconds) * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	if client.cfg.Temperature <= 0 {
		client.cfg.Temperature = defaultTemperature
	}
	if client.cfg.MaxOutputTokens <= 0 {
		client.cfg.MaxOutputTokens = defaultMaxOutputToken
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// GenerateInline sends the media bytes embedded in the request body and
// returns the generated text.
func (c *Client) GenerateInline(ctx context.Context, instruction, request string, data []byte, mimeType string) (string, error) {
	if err := c.checkReady(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", services.Wrap(services.ErrValidation, "gemini", "generate", "inline content is empty", nil)
	}
	parts := []part{
		{InlineData: &blob{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
		{Text: request},
	}
	return c.generate(ctx, instruction, parts)
}

// GenerateFromFile references previously uploaded content by URI and
// returns the generated text.
func (c *Client) GenerateFromFile(ctx context.Context, instruction, request, fileURI, mimeType string) (string, error) {
	if err := c.checkReady(); err != nil {
		return "", err
	}
	if strings.TrimSpace(fileURI) == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "generate", "file uri required", nil)
	}
	parts := []part{
		{FileData: &fileData{MIMEType: mimeType, FileURI: fileURI}},
		{Text: request},
	}
	return c.generate(ctx, instruction, parts)
}

// GenerateText issues a text-only generation request.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.checkReady(); err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "generate", "prompt required", nil)
	}
	return c.generate(ctx, "", []part{{Text: prompt}})
}

func (c *Client) checkReady() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "gemini", "generate", "api key required", nil)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, instruction string, parts []part) (string, error) {
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
		SafetySettings: permissiveSafetySettings(),
	}
	if strings.TrimSpace(instruction) != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: instruction}}}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	body, err := c.postJSON(ctx, endpoint, payload)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrFatal, "gemini", "generate", "decode response", err)
	}
	if parsed.Error != nil {
		return "", classifyAPIError(parsed.Error)
	}
	return extractText(parsed)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "gemini", "request", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, services.Wrap(services.ErrFatal, "gemini", "request", "new request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}

func permissiveSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, safetySetting{Category: category, Threshold: "BLOCK_NONE"})
	}
	return settings
}

func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTransient, "gemini", "request", "request deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTransient, "gemini", "request", "network timeout", err)
	}
	return services.Wrap(services.ErrTransient, "gemini", "request", "http error", err)
}

func classifyStatus(statusCode int, body []byte) error {
	snippet := summarizeBody(body)
	message := fmt.Sprintf("http %d: %s", statusCode, snippet)
	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusRequestTimeout,
		statusCode >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, "gemini", "request", message, nil)
	default:
		return services.Wrap(services.ErrFatal, "gemini", "request", message, nil)
	}
}

func classifyAPIError(apiErr *apiError) error {
	message := fmt.Sprintf("api error %d %s: %s", apiErr.Code, apiErr.Status, strings.TrimSpace(apiErr.Message))
	switch {
	case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, "gemini", "generate", message, nil)
	default:
		return services.Wrap(services.ErrFatal, "gemini", "generate", message, nil)
	}
}

var blockedFinishReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"PROHIBITED_CONTENT": true,
	"BLOCKLIST":          true,
	"SPII":               true,
}

func extractText(resp generateResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", services.Wrap(services.ErrContentBlocked, "gemini", "generate",
			fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason), nil)
	}
	if len(resp.Candidates) == 0 {
		return "", services.Wrap(services.ErrEmptyResponse, "gemini", "generate", "no candidates returned", nil)
	}

	var finishReason string
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if finishReason == "" {
			finishReason = strings.ToUpper(strings.TrimSpace(candidate.FinishReason))
		}
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
	}
	text := builder.String()

	if blockedFinishReasons[finishReason] {
		return "", services.Wrap(services.ErrContentBlocked, "gemini", "generate",
			fmt.Sprintf("generation stopped: %s", finishReason), nil)
	}
	if strings.TrimSpace(text) == "" {
		message := "candidate contained no text"
		if finishReason != "" {
			message = fmt.Sprintf("candidate contained no text (finish reason %s)", finishReason)
		}
		return "", services.Wrap(services.ErrEmptyResponse, "gemini", "generate", message, nil)
	}
	return text, nil
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 200
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string    `json:"text,omitempty"`
	InlineData *blob     `json:"inline_data,omitempty"`
	FileData   *fileData `json:"file_data,omitempty"`
}

type blob struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type fileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
