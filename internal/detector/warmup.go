package detector

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/andresv-qr/lumqr/internal/imgproc"
	"github.com/andresv-qr/lumqr/internal/onnx"
	"github.com/yalue/onnxruntime_go"
)

// runWarmupIteration performs a single warmup inference iteration.
func (d *Detector) runWarmupIteration(sess *onnxruntime_go.DynamicAdvancedSession, tensor onnx.Tensor) error {
	inputTensor, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return err
	}
	defer func() {
		if err := inputTensor.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := []onnxruntime_go.Value{nil}
	if err := sess.Run([]onnxruntime_go.Value{inputTensor}, outputs); err != nil {
		return err
	}

	for _, o := range outputs {
		if o != nil {
			if err := o.Destroy(); err != nil {
				fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
			}
		}
	}
	return nil
}

// Warmup runs a number of forward passes with a blank image to reduce
// first-run latency.
func (d *Detector) Warmup(iterations int) error {
	if iterations <= 0 {
		return nil
	}

	d.mu.RLock()
	sess := d.session
	d.mu.RUnlock()
	if sess == nil {
		return errors.New("detector session is nil")
	}

	img := image.NewRGBA(image.Rect(0, 0, d.config.InputSize, d.config.InputSize))

	tensor, err := imgproc.NormalizeRGBNCHW(img, d.config.InputSize)
	if err != nil {
		return err
	}
	defer imgproc.ReleaseTensor(&tensor)

	for range iterations {
		if err := d.runWarmupIteration(sess, tensor); err != nil {
			return err
		}
	}
	return nil
}
