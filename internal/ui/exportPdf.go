package ui

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"Splonchpad/internal/export"
	"Splonchpad/internal/render"
)

// Exporter renders the committed drawing at export scale and writes it as
// PNG or PDF, chosen by file extension.
type Exporter struct {
	board *BoardWidget
	scale int
	opts  render.Options
}

func NewExporter(board *BoardWidget, scale int, opts render.Options) *Exporter {
	return &Exporter{board: board, scale: scale, opts: opts}
}

// WriteTo exports to w in the format named by ext.
func (e *Exporter) WriteTo(w io.Writer, ext string) error {
	format, err := export.ParseFormat(ext)
	if err != nil {
		return err
	}
	img, err := render.Export(e.board.Session().Frame(), e.board.width, e.board.height, e.scale, e.opts)
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	return export.Write(w, format, img)
}

// Show opens a save dialog and exports to the chosen file.
func (e *Exporter) Show(window fyne.Window, status func(string)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		if w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				e.board.log.Warn("close export file", "err", err)
			}
		}()

		if err := e.WriteTo(w, w.URI().Extension()); err != nil {
			e.board.log.Error("export failed", "uri", w.URI().String(), "err", err)
			dialog.ShowError(err, window)
			return
		}
		e.board.log.Info("exported", "uri", w.URI().String())
		status("Exported " + w.URI().Name())
	}, window)
	d.SetFileName("splonchpad.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	d.Show()
}
