// Package inference is a client for a hosted model inference API using the
// Hugging Face task conventions. It implements the classifier and
// transcriber capabilities the adapters consume.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
	cnet "github.com/mchmarny/cloutcheck/pkg/net"
)

const (
	DefaultBaseURL        = "https://api-inference.huggingface.co"
	DefaultToxicityModel  = "unitary/unbiased-toxic-roberta"
	DefaultSentimentModel = "cardiffnlp/twitter-roberta-base-sentiment-latest"
	DefaultNSFWModel      = "Falconsai/nsfw_image_detection"
	DefaultASRModel       = "openai/whisper-tiny"

	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
	maxErrorBody      = 512
	waitForModelHdr   = "X-Wait-For-Model"

	defaultRetryDelay = 2 * time.Second
)

// ErrModelLoading is returned while the remote model is still warming up.
var ErrModelLoading = errors.New("model is loading")

// Config configures the inference client.
type Config struct {
	BaseURL        string
	Token          string
	ToxicityModel  string
	SentimentModel string
	NSFWModel      string
	ASRModel       string
	Timeout        time.Duration
	// MaxRetries bounds the retries of a call answered with a model loading
	// status. Zero disables retries.
	MaxRetries int
	RetryDelay time.Duration
}

// Client calls the inference API.
type Client struct {
	http *http.Client
	cfg  Config
}

// NewClient creates an inference client. Models left empty use defaults.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ToxicityModel == "" {
		cfg.ToxicityModel = DefaultToxicityModel
	}
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = DefaultSentimentModel
	}
	if cfg.NSFWModel == "" {
		cfg.NSFWModel = DefaultNSFWModel
	}
	if cfg.ASRModel == "" {
		cfg.ASRModel = DefaultASRModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	var hc *http.Client
	if cfg.Token != "" {
		hc = cnet.GetOAuthClient(ctx, cfg.Token, cfg.Timeout)
	} else {
		c, err := cnet.GetHTTPClient(cfg.Timeout)
		if err != nil {
			return nil, err
		}
		hc = c
	}

	return &Client{http: hc, cfg: cfg}, nil
}

var (
	_ adapter.TextClassifier  = (*Client)(nil)
	_ adapter.ImageClassifier = (*Client)(nil)
	_ adapter.Transcriber     = (*Client)(nil)
)

// Label is one classification result.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type textRequest struct {
	Inputs  string         `json:"inputs"`
	Options map[string]any `json:"options,omitempty"`
}

// Toxicity scores text with the toxicity model.
func (c *Client) Toxicity(ctx context.Context, text string) (adapter.ToxicityScores, error) {
	labels, err := c.classifyText(ctx, c.cfg.ToxicityModel, text)
	if err != nil {
		return adapter.ToxicityScores{}, err
	}
	return ToxicityFromLabels(labels), nil
}

// Sentiment scores text with the sentiment model.
func (c *Client) Sentiment(ctx context.Context, text string) (float64, error) {
	labels, err := c.classifyText(ctx, c.cfg.SentimentModel, text)
	if err != nil {
		return 0, err
	}
	return SentimentFromLabels(labels), nil
}

// NSFW scores an image file with the NSFW model.
func (c *Client) NSFW(ctx context.Context, path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading image: %w", err)
	}
	var labels []Label
	if err := c.post(ctx, c.cfg.NSFWModel, contentTypeBinary, b, &labels); err != nil {
		return 0, err
	}
	return NSFWFromLabels(labels), nil
}

// Transcribe converts an audio file to text with the speech model.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, c.cfg.ASRModel, contentTypeBinary, b, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Text), nil
}

// classifyText handles both the flat and the nested label list shapes.
func (c *Client) classifyText(ctx context.Context, model, text string) ([]Label, error) {
	body, err := json.Marshal(textRequest{
		Inputs:  text,
		Options: map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var raw json.RawMessage
	if err := c.post(ctx, model, contentTypeJSON, body, &raw); err != nil {
		return nil, err
	}

	var nested [][]Label
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}
	var flat []Label
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decoding labels from %s: %w", model, err)
	}
	return flat, nil
}

// post retries calls rejected while the model is loading.
func (c *Client) post(ctx context.Context, model, contentType string, body []byte, target any) error {
	var err error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("model loading, retrying", "model", model, "attempt", attempt)
			if werr := cnet.Backoff(ctx, c.cfg.RetryDelay, attempt); werr != nil {
				return werr
			}
		}
		err = c.postOnce(ctx, model, contentType, body, target)
		if !errors.Is(err, ErrModelLoading) {
			return err
		}
	}
	return err
}

func (c *Client) postOnce(ctx context.Context, model, contentType string, body []byte, target any) error {
	url := c.cfg.BaseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(waitForModelHdr, "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cnet.PrintHTTPResponse(resp)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("%s: %w", model, ErrModelLoading)
		}
		return fmt.Errorf("calling %s (status: %d): %s", model, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding %s response: %w", model, err)
	}
	slog.Debug("inference call", "model", model, "bytes", len(body))
	return nil
}
