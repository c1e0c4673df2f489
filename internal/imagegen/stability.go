// Package imagegen wraps the Stability.ai inpainting API used to dress
// uploaded dog photos in brand apparel.
package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"server/internal/domain"
)

const defaultBaseURL = "https://api.stability.ai/v2beta/stable-image"

// Generator is the port the orchestrator depends on; tests inject stubs.
type Generator interface {
	Generate(ctx context.Context, image []byte, description string) ([]byte, error)
	DescribeImage(ctx context.Context, image []byte) string
	Healthy() bool
}

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client calls the Stability.ai edit/inpaint endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
		timeout:    timeout,
	}
}

// Generate sends the uploaded image plus a clothing mask to the vendor
// and returns the edited image bytes. Every failure mode maps to
// AIGenerationFailed; quota, auth and content-policy faults get distinct
// human-readable reasons.
func (c *Client) Generate(ctx context.Context, img []byte, description string) ([]byte, error) {
	if len(img) == 0 {
		return nil, domain.NewError(domain.KindAIGenerationFailed,
			"image must be successfully uploaded before AI generation", "")
	}

	prompt := InpaintPrompt(description)
	mask := ClothingMask(img)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := writeFilePart(form, "image", "image.png", img); err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "failed to build vendor request", err)
	}
	if err := writeFilePart(form, "mask", "mask.png", mask); err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "failed to build vendor request", err)
	}
	_ = form.WriteField("prompt", prompt)
	_ = form.WriteField("output_format", "png")
	if err := form.Close(); err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "failed to build vendor request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/edit/inpaint", &body)
	if err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "failed to build vendor request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed,
			"failed to connect to image generation vendor", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if reason := classifyVendorFailure(string(detail)); reason != "" {
			return nil, domain.NewError(domain.KindAIGenerationFailed, reason, string(detail))
		}
		return nil, domain.NewError(domain.KindAIGenerationFailed,
			fmt.Sprintf("vendor API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(detail))), "")
	}

	generated, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "failed to read vendor response", err)
	}
	if len(generated) == 0 {
		return nil, domain.NewError(domain.KindAIGenerationFailed, "no image data received from vendor", "")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(generated)); err != nil {
		return nil, domain.WrapError(domain.KindAIGenerationFailed, "invalid image received from vendor", err)
	}

	return generated, nil
}

// DescribeImage returns a short description of the dog used to enrich
// the inpaint prompt. Vision-based analysis is a possible upgrade; the
// canned description mirrors the vendor prompt expectations.
func (c *Client) DescribeImage(ctx context.Context, img []byte) string {
	return "A friendly, well-groomed dog with a beautiful coat, looking happy and energetic"
}

// Healthy checks only the credential shape; it never performs a live
// round trip against the vendor.
func (c *Client) Healthy() bool {
	return strings.HasPrefix(c.apiKey, "sk-") && len(c.apiKey) > 10
}

var _ Generator = (*Client)(nil)

func writeFilePart(form *multipart.Writer, field, filename string, data []byte) error {
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// classifyVendorFailure maps known vendor failure categories onto
// distinct human-readable reasons. Returns empty when unrecognized.
func classifyVendorFailure(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "quota") || strings.Contains(lower, "rate_limit") || strings.Contains(lower, "rate limit"):
		return "vendor quota or rate limit exceeded"
	case strings.Contains(lower, "authentication") || strings.Contains(lower, "unauthorized"):
		return "vendor authentication failed"
	case strings.Contains(lower, "content_policy") || strings.Contains(lower, "safety"):
		return "image generation blocked by content policy"
	default:
		return ""
	}
}
