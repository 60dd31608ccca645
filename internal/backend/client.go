// Package backend talks to the redesign backend over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 4096

// Client is safe for concurrent use.
type Client struct {
	origin     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the backend at origin. A zero timeout leaves
// requests bounded only by their context.
func NewClient(origin string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	origin = strings.TrimSpace(origin)
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", origin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", origin)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		origin:     strings.TrimRight(origin, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *Client) Origin() string {
	return c.origin
}

// Resolve turns an image reference into a fetchable URL. Absolute URLs are kept,
// paths are joined to the backend origin.
func (c *Client) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.origin + "/" + strings.TrimLeft(ref, "/")
}

func (c *Client) Upload(ctx context.Context, image ImageFile) (*UploadResponse, error) {
	var out UploadResponse
	if err := c.postMultipart(ctx, "upload", "/api/upload", image, nil, &out); err != nil {
		return nil, err
	}
	if out.ImagePath == "" {
		return nil, &MalformedResponseError{Op: "upload", Field: "image_path"}
	}
	return &out, nil
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	fields := [][2]string{
		{"room_type", req.RoomType},
		{"style", req.Style},
		{"budget", strconv.FormatInt(req.Budget, 10)},
		{"provider", req.Provider},
		{"strength", strconv.FormatFloat(req.Strength, 'f', -1, 64)},
	}
	var out GenerateResponse
	if err := c.postMultipart(ctx, "generate", "/api/generate", req.Image, fields, &out); err != nil {
		return nil, err
	}
	if out.ImageURL == "" {
		return nil, &MalformedResponseError{Op: "generate", Field: "image_url"}
	}
	return &out, nil
}

func (c *Client) Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error) {
	fields := [][2]string{{"budget", strconv.FormatInt(req.Budget, 10)}}
	var out DetectResponse
	if err := c.postMultipart(ctx, "detect", "/vision/detect", req.Image, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	if req.DetectedItems == nil {
		req.DetectedItems = []Detection{}
	}
	var out PlanResponse
	if err := c.postJSON(ctx, "plan", "/api/plan", req, &out); err != nil {
		return nil, err
	}
	if out.Plan == nil {
		return nil, &MalformedResponseError{Op: "plan", Field: "plan"}
	}
	return &out, nil
}

func (c *Client) Segment(ctx context.Context, req SegmentRequest) (*SegmentResponse, error) {
	var out SegmentResponse
	if err := c.postJSON(ctx, "segment", "/edit/segment", req, &out); err != nil {
		return nil, err
	}
	if out.MaskPath == "" {
		return nil, &MalformedResponseError{Op: "segment", Field: "mask_path"}
	}
	return &out, nil
}

func (c *Client) Recolor(ctx context.Context, req RecolorRequest) (*EditResponse, error) {
	var out EditResponse
	if err := c.postJSON(ctx, "recolor", "/edit/recolor", req, &out); err != nil {
		return nil, err
	}
	if out.ImageURL == "" {
		return nil, &MalformedResponseError{Op: "recolor", Field: "image_url"}
	}
	return &out, nil
}

func (c *Client) Inpaint(ctx context.Context, req InpaintRequest) (*EditResponse, error) {
	var out EditResponse
	if err := c.postJSON(ctx, "inpaint", "/edit/inpaint", req, &out); err != nil {
		return nil, err
	}
	if out.ImageURL == "" {
		return nil, &MalformedResponseError{Op: "inpaint", Field: "image_url"}
	}
	return &out, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.get(ctx, "health", "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	if entry.Actions == nil {
		entry.Actions = []HistoryAction{}
	}
	return c.postJSON(ctx, "append history", "/api/history", entry, nil)
}

func (c *Client) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := c.get(ctx, "list history", "/api/history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch downloads the bytes behind an image reference.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target := c.Resolve(ref)
	if target == "" {
		return nil, &TransportError{Op: "fetch", Err: errors.New("empty image reference")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "fetch", StatusCode: resp.StatusCode, Detail: target}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Err: err}
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.origin+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return c.do(req, op, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+path, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) postMultipart(ctx context.Context, op, path string, image ImageFile, fields [][2]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	name := image.Name
	if name == "" {
		name = "upload.jpg"
	}
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("%s: build form: %w", op, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: build form: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+path, &buf)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("op", op),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("malformed response", zap.String("op", op), zap.Error(err))
		return &MalformedResponseError{Op: op, Field: "body", Err: err}
	}
	return nil
}

func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var fe fastAPIError
	if json.Unmarshal(data, &fe) == nil && fe.Detail != nil {
		if s, ok := fe.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(fe.Detail); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(string(data))
}
