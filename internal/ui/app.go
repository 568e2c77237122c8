package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"Splonchpad/internal/config"
	"Splonchpad/internal/render"
	"Splonchpad/internal/state"
)

// RunApp opens the desktop sketchpad and blocks until the window closes.
func RunApp(cfg *config.Config, glyphs *render.Glyphs, log *slog.Logger) error {
	opts := render.Options{
		Background:  cfg.Canvas.BackgroundColor(),
		StickerSize: cfg.Canvas.StickerSize,
		Glyphs:      glyphs,
	}
	raster, err := render.NewRaster(cfg.Canvas.Width, cfg.Canvas.Height, 1, opts)
	if err != nil {
		return fmt.Errorf("create raster: %w", err)
	}
	defer raster.Close()

	session := state.NewSession(state.WithPalette(cfg.Palette()), state.WithLogger(log))
	board := NewBoardWidget(session, render.NewPipeline(raster, log), cfg.Canvas.Width, cfg.Canvas.Height, log)

	myApp := app.New()
	myWindow := myApp.NewWindow("Splonchpad")

	status := widget.NewLabel("Ready")
	exporter := NewExporter(board, cfg.Canvas.ExportScale, opts)
	_, toolbar := NewToolbar(board, myWindow, func() {
		exporter.Show(myWindow, status.SetText)
	})

	session.OnChange(func(state.Change) {
		doc := session.Document()
		status.SetText(fmt.Sprintf("%s · %d items · %d redoable", session.Mode(), doc.Len(), doc.RedoDepth()))
	})

	myWindow.SetContent(container.NewBorder(toolbar, status, nil, nil, container.NewCenter(board)))
	myWindow.Resize(fyne.NewSize(float32(cfg.Canvas.Width*zoom+240), float32(cfg.Canvas.Height*zoom+120)))
	myWindow.ShowAndRun()
	return nil
}
