package analysis

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage returns an image filled with one color.
func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		filename string
		want     PhotoCategory
	}{
		{"IMG_front_01.jpg", CategoryExteriorFront},
		{"rear-view.png", CategoryExteriorRear},
		{"Driver_side.jpeg", CategoryExteriorDriver},
		{"passenger.jpg", CategoryExteriorPassenger},
		{"interior_dash.jpg", CategoryInterior},
		{"damage_closeup.jpg", CategoryDamage},
		{"front_damage.jpg", CategoryExteriorFront},
		{"IMG_0001.jpg", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, categorize(tt.filename))
		})
	}
}

func TestPreprocessor_Process(t *testing.T) {
	pre := NewPreprocessor(zerolog.Nop())
	img := solidImage(32, 24, color.RGBA{R: 120, G: 120, B: 120, A: 255})

	photos, err := pre.Process([]PhotoInput{
		{Data: encodeJPEG(t, img), ContentType: "image/jpeg", Filename: "front.jpg"},
		{Data: encodePNG(t, img), ContentType: "image/png", Filename: "rear.png"},
	})
	require.NoError(t, err)
	require.Len(t, photos, 2)

	assert.Equal(t, "jpeg", photos[0].Format)
	assert.Equal(t, 32, photos[0].Width)
	assert.Equal(t, 24, photos[0].Height)
	assert.Equal(t, CategoryExteriorFront, photos[0].Category)

	// PNG is on the allow-list and must not be re-encoded.
	assert.Equal(t, "png", photos[1].Format)
	assert.Equal(t, CategoryExteriorRear, photos[1].Category)
}

func TestPreprocessor_ReencodesNonCanonicalFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, solidImage(16, 16, color.White), nil))

	pre := NewPreprocessor(zerolog.Nop())
	photos, err := pre.Process([]PhotoInput{{Data: buf.Bytes(), Filename: "damage.gif"}})
	require.NoError(t, err)
	require.Len(t, photos, 1)

	assert.Equal(t, "jpeg", photos[0].Format)
	_, format, err := image.Decode(bytes.NewReader(photos[0].Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestPreprocessor_SkipsInvalidPhotos(t *testing.T) {
	pre := NewPreprocessor(zerolog.Nop())
	valid := encodeJPEG(t, solidImage(16, 16, color.White))

	photos, err := pre.Process([]PhotoInput{
		{Data: []byte("not an image"), Filename: "broken.jpg"},
		{Data: valid, Filename: "ok.jpg"},
		{Data: nil, Filename: "empty.jpg"},
	})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "ok.jpg", photos[0].Filename)
}

func TestPreprocessor_AllInvalidFailsRun(t *testing.T) {
	pre := NewPreprocessor(zerolog.Nop())

	_, err := pre.Process([]PhotoInput{
		{Data: []byte("garbage"), Filename: "a.jpg"},
		{Data: []byte{0x00, 0x01}, Filename: "b.jpg"},
	})
	require.ErrorIs(t, err, ErrNoValidPhotos)

	_, err = pre.Process(nil)
	require.ErrorIs(t, err, ErrNoValidPhotos)
}
