package modelserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pagecraft/docprep/internal/imagery"
	"github.com/pagecraft/docprep/internal/ocr"
	"github.com/pagecraft/docprep/internal/orient"
)

// Name identifies the server backend in logs.
func (c *Client) Name() string {
	return "server"
}

type orientationResult struct {
	LabelNames []string  `json:"label_names"`
	Scores     []float64 `json:"scores"`
}

// Classify asks the document orientation model for the clockwise rotation
// of the image at path. The top label is used.
func (c *Client) Classify(ctx context.Context, path string) (orient.Angle, error) {
	raw, err := c.infer(ctx, EndpointOrientation, path)
	if err != nil {
		return 0, err
	}

	var res orientationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointOrientation, err)
	}
	if len(res.LabelNames) == 0 {
		return 0, fmt.Errorf("%w: %s: no labels", ErrMalformedResponse, EndpointOrientation)
	}
	return orient.ParseLabel(res.LabelNames[0])
}

type unwarpResult struct {
	DoctrImg struct {
		Shape []int  `json:"shape"`
		Data  string `json:"data"`
	} `json:"doctr_img"`
}

// Unwarp asks the unwarping model to flatten the image at path. The model
// answers with a BGR raster.
func (c *Client) Unwarp(ctx context.Context, path string) (imagery.Raster, error) {
	raw, err := c.infer(ctx, EndpointUnwarp, path)
	if err != nil {
		return imagery.Raster{}, err
	}

	var res unwarpResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return imagery.Raster{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointUnwarp, err)
	}
	shape := res.DoctrImg.Shape
	if len(shape) != 3 {
		return imagery.Raster{}, fmt.Errorf("%w: %s: shape %v", ErrMalformedResponse, EndpointUnwarp, shape)
	}
	data, err := base64.StdEncoding.DecodeString(res.DoctrImg.Data)
	if err != nil {
		return imagery.Raster{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointUnwarp, err)
	}

	r := imagery.Raster{Height: shape[0], Width: shape[1], Channels: shape[2], Data: data}
	if err := r.Validate(); err != nil {
		return imagery.Raster{}, err
	}
	return r, nil
}

type structuredResult struct {
	RecTexts  []string      `json:"rec_texts"`
	RecScores []float64     `json:"rec_scores"`
	DtPolys   [][][]float64 `json:"dt_polys"`
}

// Recognize runs the OCR pipeline on the image at path.
func (c *Client) Recognize(ctx context.Context, path string) (ocr.Result, error) {
	raw, err := c.infer(ctx, EndpointOCR, path)
	if err != nil {
		return ocr.Result{}, err
	}
	return decodeOCR(raw)
}

// decodeOCR accepts the structured object shape, the legacy list shape
// [[poly, [text, score]], ...] and null.
func decodeOCR(raw json.RawMessage) (ocr.Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ocr.Result{}, nil
	}

	switch trimmed[0] {
	case '{':
		var res structuredResult
		if err := json.Unmarshal(trimmed, &res); err != nil {
			return ocr.Result{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointOCR, err)
		}
		polys := make([]ocr.Polygon, len(res.DtPolys))
		for i, p := range res.DtPolys {
			polys[i] = toPolygon(p)
		}
		return ocr.Result{Structured: &ocr.Structured{
			RecTexts:  res.RecTexts,
			RecScores: res.RecScores,
			DtPolys:   polys,
		}}, nil
	case '[':
		lines, err := decodeLegacy(trimmed)
		if err != nil {
			return ocr.Result{}, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, EndpointOCR, err)
		}
		return ocr.Result{Legacy: lines}, nil
	default:
		return ocr.Result{}, fmt.Errorf("%w: %s: unexpected result", ErrMalformedResponse, EndpointOCR)
	}
}

func decodeLegacy(raw []byte) ([]ocr.LegacyLine, error) {
	var entries [][2]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	lines := make([]ocr.LegacyLine, 0, len(entries))
	for _, e := range entries {
		var box [][]float64
		if err := json.Unmarshal(e[0], &box); err != nil {
			return nil, fmt.Errorf("box: %w", err)
		}
		var rec [2]json.RawMessage
		if err := json.Unmarshal(e[1], &rec); err != nil {
			return nil, fmt.Errorf("recognition: %w", err)
		}
		var line ocr.LegacyLine
		if err := json.Unmarshal(rec[0], &line.Text); err != nil {
			return nil, fmt.Errorf("text: %w", err)
		}
		if err := json.Unmarshal(rec[1], &line.Score); err != nil {
			return nil, fmt.Errorf("score: %w", err)
		}
		line.Box = toPolygon(box)
		lines = append(lines, line)
	}
	return lines, nil
}

func toPolygon(points [][]float64) ocr.Polygon {
	poly := make(ocr.Polygon, 0, len(points))
	for _, p := range points {
		if len(p) < 2 {
			continue
		}
		poly = append(poly, ocr.Point{X: p[0], Y: p[1]})
	}
	return poly
}
