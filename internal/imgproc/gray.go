package imgproc

import (
	"image"
	"image/draw"
)

// ToGray converts any image to 8-bit grayscale using the standard library
// luminance weights.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// EqualizeHistogram spreads the grayscale histogram across the full intensity
// range via the cumulative distribution function. Low-contrast thermal prints
// frequently become decodable only after this step.
func EqualizeHistogram(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	if total == 0 {
		return g
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}

	// Map intensities through the CDF, anchored at the first nonzero bin so
	// the darkest present value maps to 0.
	var cdf [256]int
	sum := 0
	for i, c := range hist {
		sum += c
		cdf[i] = sum
	}
	cdfMin := 0
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}
	denom := total - cdfMin
	if denom <= 0 {
		// Flat image, nothing to equalize.
		return g
	}

	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8((cdf[i] - cdfMin) * 255 / denom)
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			dst[x] = lut[v]
		}
	}
	return out
}

// OtsuLevel computes the global binarization threshold that maximizes
// between-class variance of the grayscale histogram.
func OtsuLevel(g *image.Gray) uint8 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	total := w * h
	if total == 0 {
		return 128
	}

	var hist [256]int
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var (
		sumBg   float64
		weightB int
		maxVar  float64
		level   uint8
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumBg += float64(t) * float64(hist[t])
		meanB := sumBg / float64(weightB)
		meanF := (sumAll - sumBg) / float64(weightF)
		diff := meanB - meanF
		v := float64(weightB) * float64(weightF) * diff * diff
		if v > maxVar {
			maxVar = v
			level = uint8(t)
		}
	}
	return level
}

// Threshold binarizes a grayscale image: pixels above level become white,
// the rest black.
func Threshold(g *image.Gray, level uint8) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range src {
			if v > level {
				dst[x] = 255
			} else {
				dst[x] = 0
			}
		}
	}
	return out
}

// OtsuThreshold applies Otsu binarization in one step.
func OtsuThreshold(g *image.Gray) *image.Gray {
	return Threshold(g, OtsuLevel(g))
}
