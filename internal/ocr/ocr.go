// Package ocr extracts a text hint from a rendered canvas image. The
// hint rides along with capture requests to help downstream ingestion;
// recognition failure is never fatal to a capture.
package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// minSide is the smallest image dimension fed to Tesseract; smaller
// renders are upscaled first.
const minSide = 600

// Engine wraps a Tesseract client configured for sparse handwritten and
// typed labels rather than running prose.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an OCR engine. The caller owns Close.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}

	// Diagram labels are short identifiers more often than dictionary
	// words; keep Tesseract from "correcting" them.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases Tesseract resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// HintFromImage runs OCR over a rendered canvas and returns the
// recognized text with whitespace collapsed. An empty string with a nil
// error means nothing was recognized.
func (e *Engine) HintFromImage(img image.Image) (string, error) {
	mat, err := gocv.ImageToMatRGBA(toRGBA(img))
	if err != nil {
		return "", fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	processed := preprocess(mat)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return "", fmt.Errorf("encode for ocr: %w", err)
	}
	defer buf.Close()

	// Canvas text is scattered labels, not a uniform block.
	if err := e.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return strings.Join(strings.Fields(text), " "), nil
}

// preprocess binarizes the render so pen strokes and text come out as
// clean dark-on-light input.
func preprocess(src gocv.Mat) gocv.Mat {
	scaled := gocv.NewMat()
	if side := min(src.Cols(), src.Rows()); side > 0 && side < minSide {
		f := float64(minSide) / float64(side)
		gocv.Resize(src, &scaled, image.Point{}, f, f, gocv.InterpolationCubic)
	} else {
		src.CopyTo(&scaled)
	}
	defer scaled.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorRGBAToGray)
	defer gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return binary
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
