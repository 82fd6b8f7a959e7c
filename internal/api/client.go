// Package api is the HTTP client for the knowledge-ingestion
// collaborator: canvas load/save, capture, and drawing-block ink
// ingestion. The engine treats this boundary as opaque.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ink-canvas/internal/canvas"
)

// Client talks to the collaborator service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Document is a loaded canvas with its metadata.
type Document struct {
	ID    string
	Title string
	State canvas.State
}

// LoadCanvas fetches a canvas document. The state may sit at the top
// level of the response or nested under a namespaced/metadata key;
// malformed state degrades to an empty canvas.
func (c *Client) LoadCanvas(ctx context.Context, id string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/canvases/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("load canvas %s: %w", id, err)
	}

	var meta struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal(body, &meta)

	return &Document{
		ID:    id,
		Title: meta.Title,
		State: canvas.DecodeDocument(body),
	}, nil
}

// SaveCanvas posts the full canvas state.
func (c *Client) SaveCanvas(ctx context.Context, id, title string, s canvas.State) error {
	payload := struct {
		CanvasID string       `json:"canvas_id"`
		Title    string       `json:"title"`
		State    canvas.State `json:"state"`
	}{CanvasID: id, Title: title, State: s}

	if _, err := c.post(ctx, "/api/canvases/save", payload); err != nil {
		return fmt.Errorf("save canvas %s: %w", id, err)
	}
	return nil
}

// CaptureRequest hands the canvas content to ingestion. Each content
// field crosses the wire as an independently JSON-stringified payload.
type CaptureRequest struct {
	CanvasID string
	Title    string
	State    canvas.State
	OCRText  string
}

// CaptureResult is the ingestion outcome shown to the user.
type CaptureResult struct {
	LectureID    string   `json:"lecture_id"`
	NodesCreated []string `json:"nodes_created"`
	NodesUpdated []string `json:"nodes_updated"`
	LinksCreated []string `json:"links_created"`
	Transcript   string   `json:"transcript"`
	RunID        string   `json:"run_id"`
}

// Capture submits the canvas for knowledge ingestion.
func (c *Client) Capture(ctx context.Context, r CaptureRequest) (*CaptureResult, error) {
	strokes, err := json.Marshal(r.State.Strokes)
	if err != nil {
		return nil, fmt.Errorf("marshal strokes: %w", err)
	}
	textBlocks, err := json.Marshal(r.State.TextBlocks)
	if err != nil {
		return nil, fmt.Errorf("marshal text blocks: %w", err)
	}
	drawingBlocks, err := json.Marshal(r.State.DrawingBlocks)
	if err != nil {
		return nil, fmt.Errorf("marshal drawing blocks: %w", err)
	}
	phases, err := json.Marshal(r.State.Phases)
	if err != nil {
		return nil, fmt.Errorf("marshal phases: %w", err)
	}

	payload := struct {
		CanvasID      string `json:"canvas_id"`
		Title         string `json:"title"`
		Strokes       string `json:"strokes"`
		TextBlocks    string `json:"text_blocks"`
		DrawingBlocks string `json:"drawing_blocks"`
		Phases        string `json:"phases"`
		OCRText       string `json:"ocr_text,omitempty"`
	}{
		CanvasID:      r.CanvasID,
		Title:         r.Title,
		Strokes:       string(strokes),
		TextBlocks:    string(textBlocks),
		DrawingBlocks: string(drawingBlocks),
		Phases:        string(phases),
		OCRText:       r.OCRText,
	}

	body, err := c.post(ctx, "/api/capture", payload)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	var result CaptureResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("capture: parse response: %w", err)
	}
	return &result, nil
}

// IngestInk submits a drawing block's rendered PNG for ingestion.
func (c *Client) IngestInk(ctx context.Context, canvasID, blockID string, png []byte) error {
	payload := struct {
		CanvasID string `json:"canvas_id"`
		BlockID  string `json:"block_id"`
		Image    string `json:"image_base64"`
	}{CanvasID: canvasID, BlockID: blockID, Image: base64.StdEncoding.EncodeToString(png)}

	if _, err := c.post(ctx, "/api/ingest-ink", payload); err != nil {
		return fmt.Errorf("ingest ink for block %s: %w", blockID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
