package analysis

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func checkerboardImage(w, h, square int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/square+y/square)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestComputeImageStats_UniformFrame(t *testing.T) {
	stats := computeImageStats(solidImage(64, 64, color.RGBA{R: 180, G: 180, B: 180, A: 255}))

	assert.Zero(t, stats.EdgeDensity)
	assert.Zero(t, stats.SaturationStd)
	assert.Zero(t, stats.ValueStd)
	assert.Zero(t, stats.damageScore())
}

func TestComputeImageStats_HighContrastFrame(t *testing.T) {
	stats := computeImageStats(checkerboardImage(64, 64, 8))

	assert.Greater(t, stats.EdgeDensity, 0.1)
	assert.Greater(t, stats.ValueStd, 100.0)
	assert.Zero(t, stats.SaturationStd, "grayscale frame has no saturation spread")
	assert.Greater(t, stats.damageScore(), damageScoreModerate)
}

func TestComputeImageStats_StrideSampling(t *testing.T) {
	// A 1024px frame is sampled at stride 2, so a 16px pattern lands on the
	// grid at the same frequency as an 8px pattern in a small frame.
	small := computeImageStats(checkerboardImage(64, 64, 8))
	large := computeImageStats(checkerboardImage(1024, 1024, 16))

	assert.InDelta(t, small.EdgeDensity, large.EdgeDensity, 0.1)
	assert.InDelta(t, small.ValueStd, large.ValueStd, 10)
}

func TestSaturationValue(t *testing.T) {
	s, v := saturationValue(255, 0, 0)
	assert.Equal(t, 255.0, s)
	assert.Equal(t, 255.0, v)

	s, v = saturationValue(128, 128, 128)
	assert.Zero(t, s)
	assert.Equal(t, 128.0, v)

	s, v = saturationValue(0, 0, 0)
	assert.Zero(t, s)
	assert.Zero(t, v)
}

func TestStddev(t *testing.T) {
	assert.Zero(t, stddev(nil))
	assert.Zero(t, stddev([]float64{5, 5, 5}))
	assert.InDelta(t, 2.0, stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
