// Package encode defines the encoder contracts between the embedding
// generator and the model transports. Encoders are pure functions from input
// to vector; normalization happens in the embedding generator.
package encode

import "context"

// TextEncoder vectorizes text.
type TextEncoder interface {
	EncodeText(ctx context.Context, text string) ([]float32, error)
}

// ImageEncoder vectorizes a decoded image, passed as its raw encoded bytes.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, img []byte) ([]float32, error)
}
