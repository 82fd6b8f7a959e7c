package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ink-canvas/internal/canvas"
)

func TestLoadCanvasDirectState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/canvases/c1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"title":"Week 3","strokes":[],"zoom":2.0,"viewX":-40}`))
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).LoadCanvas(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Week 3" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.State.Zoom != 2.0 || doc.State.ViewX != -40 {
		t.Errorf("camera = (%v, zoom %v)", doc.State.ViewX, doc.State.Zoom)
	}
}

func TestLoadCanvasNestedMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"nested","metadata":{"ink_canvas":{"strokes":[],"zoom":0.5}}}`))
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).LoadCanvas(context.Background(), "c2")
	if err != nil {
		t.Fatal(err)
	}
	if doc.State.Zoom != 0.5 {
		t.Errorf("zoom = %v, want 0.5 from nested state", doc.State.Zoom)
	}
}

func TestLoadCanvasMalformedStateDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"broken","metadata":"not an object"}`))
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).LoadCanvas(context.Background(), "c3")
	if err != nil {
		t.Fatal(err)
	}
	if doc.State.Zoom != 1 || len(doc.State.Strokes) != 0 {
		t.Errorf("state = %+v, want empty canvas", doc.State)
	}
}

func TestSaveCanvasPayload(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/canvases/save" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	s := canvas.NewState()
	s.Zoom = 1.5
	if err := NewClient(srv.URL).SaveCanvas(context.Background(), "c1", "My canvas", s); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"canvas_id", "title", "state"} {
		if _, ok := got[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
}

func TestSaveCanvasServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).SaveCanvas(context.Background(), "c1", "t", canvas.NewState())
	if err == nil {
		t.Fatal("no error on 500 response")
	}
}

func TestCaptureStringifiesContentFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		// Content fields arrive as JSON strings, not arrays.
		for _, key := range []string{"strokes", "text_blocks", "drawing_blocks", "phases"} {
			var asString string
			if err := json.Unmarshal(got[key], &asString); err != nil {
				t.Errorf("field %q is not a JSON string: %s", key, got[key])
				continue
			}
			var arr []json.RawMessage
			if err := json.Unmarshal([]byte(asString), &arr); err != nil {
				t.Errorf("field %q does not contain a JSON array: %v", key, err)
			}
		}
		var hint string
		json.Unmarshal(got["ocr_text"], &hint)
		if hint != "flow chart" {
			t.Errorf("ocr_text = %q", hint)
		}
		w.Write([]byte(`{"lecture_id":"lec-9","nodes_created":["n1","n2"],"links_created":["l1"],"transcript":"two nodes","run_id":"r77"}`))
	}))
	defer srv.Close()

	s := canvas.NewState()
	s.Strokes = append(s.Strokes, canvas.NewStroke(canvas.ToolPen, "#000", 3, []canvas.Point{
		{X: 0, Y: 0, Pressure: 0.5}, {X: 10, Y: 0, Pressure: 0.5},
	}))

	result, err := NewClient(srv.URL).Capture(context.Background(), CaptureRequest{
		CanvasID: "c1",
		Title:    "Lecture",
		State:    s,
		OCRText:  "flow chart",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.LectureID != "lec-9" || result.RunID != "r77" {
		t.Errorf("result = %+v", result)
	}
	if len(result.NodesCreated) != 2 || len(result.LinksCreated) != 1 {
		t.Errorf("result counts = %+v", result)
	}
}

func TestIngestInkEncodesImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got struct {
			CanvasID string `json:"canvas_id"`
			BlockID  string `json:"block_id"`
			Image    string `json:"image_base64"`
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.BlockID != "b1" || got.CanvasID != "c1" {
			t.Errorf("ids = %+v", got)
		}
		decoded, err := base64.StdEncoding.DecodeString(got.Image)
		if err != nil || string(decoded) != string(png) {
			t.Errorf("image round-trip failed: %v", err)
		}
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).IngestInk(context.Background(), "c1", "b1", png); err != nil {
		t.Fatal(err)
	}
}
