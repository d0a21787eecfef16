package detector

import (
	"fmt"
	"image"
)

// parseYOLOOutput converts a raw YOLO detection head into candidates in
// original-image coordinates. Two layouts are supported, both stored as
// [1, attrs, anchors]:
//
//	attrs == 37: YOLOv8-style head, confidence at attribute 4
//	attrs == 6:  YOLOv5-style head, confidence = objectness * class score
//
// Box coordinates are center-x, center-y, width, height. Values above 1.0
// are pixels in model-input space; values at or below 1.0 are normalized.
func parseYOLOOutput(data []float32, shape []int64, config Config, origW, origH int) ([]Candidate, error) {
	if len(shape) != 3 || shape[0] != 1 {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	attrs := int(shape[1])
	anchors := int(shape[2])
	if attrs*anchors != len(data) {
		return nil, fmt.Errorf("output length %d does not match shape %v", len(data), shape)
	}
	if attrs < 5 {
		return nil, fmt.Errorf("unsupported output layout with %d attributes", attrs)
	}

	at := func(attr, i int) float32 { return data[attr*anchors+i] }

	inputSize := float64(config.InputSize)
	sx := float64(origW) / inputSize
	sy := float64(origH) / inputSize

	var out []Candidate
	for i := 0; i < anchors; i++ {
		var conf float32
		if attrs == 6 {
			conf = at(4, i) * at(5, i)
		} else {
			conf = at(4, i)
		}
		if conf < config.RawThreshold {
			continue
		}

		cx := float64(at(0, i))
		cy := float64(at(1, i))
		w := float64(at(2, i))
		h := float64(at(3, i))
		if cx <= 1.0 && cy <= 1.0 && w <= 1.0 && h <= 1.0 {
			cx *= inputSize
			cy *= inputSize
			w *= inputSize
			h *= inputSize
		}

		x0 := int((cx - w/2) * sx)
		y0 := int((cy - h/2) * sy)
		x1 := int((cx + w/2) * sx)
		y1 := int((cy + h/2) * sy)

		box := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, origW, origH))
		if box.Empty() {
			continue
		}
		out = append(out, Candidate{Box: box, Confidence: float64(conf)})
	}

	sortByConfidence(out)
	if len(out) > config.MaxCandidates {
		out = out[:config.MaxCandidates]
	}
	return out, nil
}
