// Package signature converts signature images between uploaded files, base64
// data URIs and the formats the PDF engine can embed.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidDataURI   = errors.New("invalid data URI")
	ErrUnsupportedImage = errors.New("unsupported image")
)

// Image is a decoded data URI.
type Image struct {
	MIME string
	Data []byte
}

// IsDataURI reports whether s looks like an inline image.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// ParseDataURI decodes "data:image/<type>;base64,<payload>".
func ParseDataURI(s string) (Image, error) {
	if !IsDataURI(s) {
		return Image{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return Image{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return Image{MIME: mime, Data: data}, nil
}

// EncodeDataURI sniffs the content type of data and wraps it in a data URI.
func EncodeDataURI(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Normalize returns data in a format the PDF engine embeds (PNG, JPEG or
// GIF) and the matching gofpdf image type. WebP, and PNGs gofpdf cannot read
// (16-bit or interlaced), are re-encoded as 8-bit PNG.
func Normalize(data []byte) ([]byte, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	switch format {
	case "png":
		if !needsReencode(data) {
			return data, "PNG", nil
		}
		return reencode(data)
	case "jpeg":
		return data, "JPG", nil
	case "gif":
		return data, "GIF", nil
	case "webp":
		return reencode(data)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
}

// IHDR offsets: 8 byte signature, chunk length and type, width, height.
const (
	pngBitDepth  = 24
	pngInterlace = 28
)

func needsReencode(data []byte) bool {
	if len(data) <= pngInterlace {
		return true
	}
	return data[pngBitDepth] == 16 || data[pngInterlace] != 0
}

func reencode(data []byte) ([]byte, string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	dst := image.NewNRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}

// Size returns the pixel dimensions of an encoded image.
func Size(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return cfg.Width, cfg.Height, nil
}
