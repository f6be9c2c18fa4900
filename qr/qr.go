// Package qr renders tool codes as PNG data URLs and reads them back from
// scanned images.
package qr

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

const (
	DataURLPrefix = "data:image/png;base64,"
	// CodeBytes random bytes per code, rendered as 2x hex chars.
	CodeBytes = 4
	imageSize = 256
)

var ErrNotDataURL = errors.New("not a png data url")

// NewCode returns a short lowercase hex token used as the tool id.
func NewCode() (string, error) {
	buf := make([]byte, CodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// DataURL renders content as a QR PNG and wraps it in a data URL.
func DataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("render qr: %w", err)
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// Decode reads the text of the first QR code found in a PNG or JPEG image.
func Decode(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize image: %w", err)
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no qr code found: %w", err)
	}
	return strings.TrimSpace(res.GetText()), nil
}

// DecodeDataURL is Decode for a value produced by DataURL.
func DecodeDataURL(s string) (string, error) {
	if !strings.HasPrefix(s, DataURLPrefix) {
		return "", ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, DataURLPrefix))
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}
