// Package qrcode renders provisioning URIs as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace.
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	// ErrEncode is returned when the encoder rejects the content.
	ErrEncode = errors.New("qrcode: failed to encode")
)

// DefaultSize is the image width in pixels used when none is configured.
const DefaultSize = 256

// Renderer turns text into a QR image.
type Renderer interface {
	PNG(content string) ([]byte, error)
	DataURL(content string) (string, error)
}

// PNGRenderer renders square PNG images at medium error correction.
type PNGRenderer struct {
	size int
}

// NewPNGRenderer returns a renderer producing size x size images.
func NewPNGRenderer(size int) *PNGRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGRenderer{size: size}
}

// PNG encodes content as a PNG image.
func (r *PNGRenderer) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, r.size)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return png, nil
}

// DataURL encodes content as a data:image/png;base64 URL suitable for an
// <img src> attribute.
func (r *PNGRenderer) DataURL(content string) (string, error) {
	png, err := r.PNG(content)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
