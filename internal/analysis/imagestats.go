package analysis

import (
	"image"
	"math"
)

// Pure-Go image statistics backing the terminal damage heuristic. The
// heuristic must never fail, so this path has no external dependencies: a
// blurred grayscale gradient stands in for a full Canny pass, and paint
// consistency is read from the spread of the HSV saturation and value
// channels.

const (
	// statsMaxSide bounds the sampling grid so thresholds stay stable
	// across input resolutions.
	statsMaxSide = 512

	// edgeGradientThreshold marks a pixel as an edge. Matches the upper
	// hysteresis threshold of the reference edge detector.
	edgeGradientThreshold = 150.0
)

type imageStats struct {
	EdgeDensity   float64
	SaturationStd float64
	ValueStd      float64
}

// damageScore combines edge density with paint inconsistency. Scores at or
// below 0.5 mean no visible damage.
func (s imageStats) damageScore() float64 {
	return s.EdgeDensity*10 + s.SaturationStd/50 + s.ValueStd/50
}

// computeImageStats samples the frame on a bounded grid and derives the
// edge and channel statistics the damage heuristic needs.
func computeImageStats(img image.Image) imageStats {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return imageStats{}
	}

	stride := 1
	if longest := max(srcW, srcH); longest > statsMaxSide {
		stride = (longest + statsMaxSide - 1) / statsMaxSide
	}
	w := srcW / stride
	h := srcH / stride
	if w < 3 || h < 3 {
		w, h, stride = srcW, srcH, 1
	}

	gray := make([]float64, w*h)
	sat := make([]float64, w*h)
	val := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x*stride, bounds.Min.Y+y*stride).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			i := y*w + x
			gray[i] = 0.299*rf + 0.587*gf + 0.114*bf
			sat[i], val[i] = saturationValue(rf, gf, bf)
		}
	}

	blurred := gaussianBlur(gray, w, h)

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if sobelMagnitude(blurred, w, x, y) >= edgeGradientThreshold {
				edges++
			}
		}
	}

	return imageStats{
		EdgeDensity:   float64(edges) / float64(w*h),
		SaturationStd: stddev(sat),
		ValueStd:      stddev(val),
	}
}

// saturationValue returns the HSV S and V channels on a 0..255 scale.
func saturationValue(r, g, b float64) (s, v float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	if maxC == 0 {
		return 0, 0
	}
	return (maxC - minC) / maxC * 255, maxC
}

// gaussianBlur applies a separable 5-tap binomial kernel, clamping at the
// image border.
func gaussianBlur(src []float64, w, h int) []float64 {
	kernel := [5]float64{1, 4, 6, 4, 1}
	const kernelSum = 16.0

	tmp := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				xi := clamp(x+k, 0, w-1)
				acc += src[y*w+xi] * kernel[k+2]
			}
			tmp[y*w+x] = acc / kernelSum
		}
	}

	dst := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				yi := clamp(y+k, 0, h-1)
				acc += tmp[yi*w+x] * kernel[k+2]
			}
			dst[y*w+x] = acc / kernelSum
		}
	}
	return dst
}

// sobelMagnitude computes the gradient magnitude at an interior pixel.
func sobelMagnitude(src []float64, w, x, y int) float64 {
	tl := src[(y-1)*w+x-1]
	tc := src[(y-1)*w+x]
	tr := src[(y-1)*w+x+1]
	ml := src[y*w+x-1]
	mr := src[y*w+x+1]
	bl := src[(y+1)*w+x-1]
	bc := src[(y+1)*w+x]
	br := src[(y+1)*w+x+1]

	gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
	gy := (bl + 2*bc + br) - (tl + 2*tc + tr)
	return math.Hypot(gx, gy)
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	n := float64(len(values))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
