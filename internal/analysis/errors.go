package analysis

import "errors"

var (
	// ErrInvalidPhoto marks a single undecodable upload. The preprocessor
	// skips the photo and keeps going.
	ErrInvalidPhoto = errors.New("invalid photo")

	// ErrNoValidPhotos is the only failure a run can surface: every upload
	// was rejected before any provider was called.
	ErrNoValidPhotos = errors.New("no valid photos provided")

	// ErrProviderUnavailable indicates an external source could not serve the
	// request (network failure, quota, bad response). The cascade treats it
	// the same as an absent result and moves on.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
