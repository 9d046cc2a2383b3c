// Package dataurl encodes images as self-describing text:
// "data:<mime>;base64,<payload>".
package dataurl

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	scheme    = "data:"
	base64Tag = ";base64"

	// DefaultMIMEType is assumed when an encoded image declares no type.
	DefaultMIMEType = "image/jpeg"

	// JPEGQuality is used for every still rasterised from a camera frame.
	JPEGQuality = 90
)

var (
	ErrNotDataURL  = errors.New("dataurl: missing data: scheme")
	ErrNotBase64   = errors.New("dataurl: payload is not base64 encoded")
	ErrEmptyImage  = errors.New("dataurl: image data is empty")
	ErrUnsupported = errors.New("dataurl: unsupported image format")
)

// DataURL is an image payload tagged with its MIME type.
type DataURL struct {
	MIMEType string `json:"mime_type"`
	Payload  string `json:"payload"` // standard base64
}

// Encode wraps raw bytes.
func Encode(mime string, data []byte) DataURL {
	return DataURL{MIMEType: mime, Payload: base64.StdEncoding.EncodeToString(data)}
}

// EncodeJPEG rasterises img to a JPEG still and wraps it.
func EncodeJPEG(img image.Image) (DataURL, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return DataURL{}, fmt.Errorf("dataurl: encoding JPEG: %w", err)
	}
	return Encode("image/jpeg", buf.Bytes()), nil
}

func (d DataURL) String() string {
	if d.IsZero() {
		return ""
	}
	return Prefix(d.MIMEType) + d.Payload
}

func (d DataURL) IsZero() bool {
	return d.Payload == "" && d.MIMEType == ""
}

// Decode returns the raw image bytes.
func (d DataURL) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("dataurl: decoding payload: %w", err)
	}
	return data, nil
}

// Prefix is the transport prefix for mime, up to and including the comma.
func Prefix(mime string) string {
	return scheme + mime + base64Tag + ","
}

// StripPrefix returns everything after the first comma of s, or "" when s
// has no comma.
func StripPrefix(s string) string {
	_, payload, ok := strings.Cut(s, ",")
	if !ok {
		return ""
	}
	return payload
}

// Parse splits an encoded image into its MIME type and payload. A missing
// MIME type yields DefaultMIMEType.
func Parse(s string) (DataURL, error) {
	if !strings.HasPrefix(s, scheme) {
		return DataURL{}, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(s[len(scheme):], ",")
	if !ok {
		return DataURL{}, fmt.Errorf("dataurl: missing payload separator")
	}
	mime, found := strings.CutSuffix(header, base64Tag)
	if !found {
		return DataURL{}, ErrNotBase64
	}
	// Drop parameters such as ";charset=..." before the encoding tag.
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = DefaultMIMEType
	}
	return DataURL{MIMEType: mime, Payload: payload}, nil
}

// DetectImageType sniffs the image format from its header and returns the
// matching MIME type.
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	switch format {
	case "jpeg", "png", "gif", "webp":
		return "image/" + format, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
}
