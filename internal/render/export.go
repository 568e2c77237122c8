package render

import (
	"image"

	"Splonchpad/internal/state"
)

// DefaultExportScale is the factor between the interactive surface and an
// exported raster.
const DefaultExportScale = 4

// Export paints the committed entities of frame onto an offscreen raster of
// width*scale × height*scale. Drafts and the preview are never exported.
// frame must be a snapshot; Export only reads it.
func Export(frame state.Frame, width, height, scale int, opts Options) (*image.RGBA, error) {
	r, err := NewRaster(width, height, scale, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	Redraw(r, frame.Committed())
	if err := r.Err(); err != nil {
		return nil, err
	}
	return r.Image(), nil
}
