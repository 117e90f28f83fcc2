package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://vision.api.cloud.yandex.net/vision/v1/batchAnalyze"

// language hints sent with every text detection request
var languageCodes = []string{"ru", "en"}

// Client talks to the cloud vision OCR endpoint. It performs a single
// attempt per call; retry policy belongs to the caller.
type Client struct {
	apiKey     string
	folderID   string
	endpoint   string
	httpClient *http.Client
}

func NewClient(apiKey, folderID string) *Client {
	return &Client{
		apiKey:   apiKey,
		folderID: folderID,
		endpoint: defaultEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithEndpoint points the client at a non-default endpoint. Used by
// tests and on-prem installations.
func NewClientWithEndpoint(apiKey, folderID, endpoint string) *Client {
	c := NewClient(apiKey, folderID)
	c.endpoint = endpoint
	return c
}

// Recognize sends one image to the provider and returns the raw recognition
// tree uninterpreted. Credentials and image format are validated before any
// network traffic happens.
func (c *Client) Recognize(ctx context.Context, imageData []byte, feature string) (*Result, error) {
	var missing []string
	if c.apiKey == "" {
		missing = append(missing, "api key")
	}
	if c.folderID == "" {
		missing = append(missing, "folder id")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Missing: missing}
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	reqBody := batchAnalyzeRequest{
		FolderID: c.folderID,
		AnalyzeSpecs: []analyzeSpec{
			{
				Content: base64.StdEncoding.EncodeToString(imageData),
				Features: []featureSpec{
					{
						Type:                feature,
						TextDetectionConfig: &textDetectionConfig{LanguageCodes: languageCodes},
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}
