// Package export encodes exported rasters into files.
package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name or file extension. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

func (f Format) Ext() string { return "." + string(f) }

// Write encodes img to w in format f.
func Write(w io.Writer, f Format, img image.Image) error {
	switch f {
	case FormatPNG:
		return WritePNG(w, img)
	case FormatPDF:
		return WritePDF(w, img, PageDPI)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
