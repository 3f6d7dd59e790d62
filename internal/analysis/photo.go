package analysis

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	// Registered decoders for the formats uploads arrive in.
	_ "image/gif"
	_ "image/png"

	"github.com/rs/zerolog"
)

// jpegQuality is used when re-encoding non-canonical uploads.
const jpegQuality = 90

// canonicalFormats are kept as-is; anything else that decodes is
// re-encoded to JPEG.
var canonicalFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
}

// categoryKeywords maps filename substrings to photo categories, checked in
// order so "front_damage.jpg" lands on the more specific exterior slot.
var categoryKeywords = []struct {
	keyword  string
	category PhotoCategory
}{
	{"front", CategoryExteriorFront},
	{"rear", CategoryExteriorRear},
	{"driver", CategoryExteriorDriver},
	{"passenger", CategoryExteriorPassenger},
	{"interior", CategoryInterior},
	{"damage", CategoryDamage},
}

// Preprocessor turns raw uploads into canonical frames for the pipeline.
type Preprocessor struct {
	log zerolog.Logger
}

func NewPreprocessor(log zerolog.Logger) *Preprocessor {
	return &Preprocessor{log: log}
}

// Process decodes, normalizes and categorizes every upload. Undecodable
// buffers are skipped per item; the run only fails when nothing survives.
func (p *Preprocessor) Process(inputs []PhotoInput) ([]Photo, error) {
	photos := make([]Photo, 0, len(inputs))

	for _, in := range inputs {
		photo, err := p.processOne(in)
		if err != nil {
			p.log.Warn().
				Err(err).
				Str("filename", in.Filename).
				Str("content_type", in.ContentType).
				Msg("skipping invalid photo")
			continue
		}
		photos = append(photos, *photo)
	}

	if len(photos) == 0 {
		return nil, ErrNoValidPhotos
	}
	return photos, nil
}

func (p *Preprocessor) processOne(in PhotoInput) (*Photo, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidPhoto)
	}

	img, format, err := image.Decode(bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}

	data := in.Data
	if !canonicalFormats[format] {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("%w: re-encode failed: %v", ErrInvalidPhoto, err)
		}
		data = buf.Bytes()
		format = "jpeg"
	}

	bounds := img.Bounds()
	return &Photo{
		Data:     data,
		Image:    img,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Category: categorize(in.Filename),
		Filename: in.Filename,
	}, nil
}

// CategorizeFilename infers a photo's semantic slot from its filename.
// Callers persisting upload records use it to store the same category the
// pipeline will assign.
func CategorizeFilename(filename string) PhotoCategory {
	return categorize(filename)
}

// categorize infers the photo's semantic slot from its filename.
func categorize(filename string) PhotoCategory {
	lower := strings.ToLower(filename)
	for _, entry := range categoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return CategoryUnknown
}

// MimeType returns the content type matching the photo's encoded format.
func (p *Photo) MimeType() string {
	return "image/" + p.Format
}
