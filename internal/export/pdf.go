package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PageDPI places an export raster made at four times the interactive size on
// a page measuring the interactive size in points.
const PageDPI = 288

// WritePDF writes a single page PDF holding img. The page is sized to the
// image at dpi, so nothing is cropped or resampled.
func WritePDF(w io.Writer, img image.Image, dpi float64) error {
	var raw bytes.Buffer
	if err := WritePNG(&raw, img); err != nil {
		return err
	}

	wd, ht := Size(img.Bounds(), dpi)

	p := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	p.SetCreator("Splonchpad", true)
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("drawing", opt, &raw)
	p.ImageOptions("drawing", 0, 0, wd, ht, false, opt, 0, "")
	if err := p.Output(w); err != nil {
		return fmt.Errorf("encode pdf: %w", err)
	}
	return nil
}

// Size reports the page size in points WritePDF would use for bounds.
func Size(bounds image.Rectangle, dpi float64) (wd, ht float64) {
	if dpi <= 0 {
		dpi = PageDPI
	}
	return float64(bounds.Dx()) * 72 / dpi, float64(bounds.Dy()) * 72 / dpi
}
