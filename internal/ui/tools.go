package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar holds the tool controls for one board.
type Toolbar struct {
	board    *BoardWidget
	window   fyne.Window
	stickers *fyne.Container
	rotation *widget.Slider
	onExport func()
}

// NewToolbar builds the controls. onExport runs when the export action is
// tapped.
func NewToolbar(board *BoardWidget, window fyne.Window, onExport func()) (*Toolbar, fyne.CanvasObject) {
	t := &Toolbar{board: board, window: window, onExport: onExport}
	s := board.Session()
	palette := s.Palette()

	thin := widget.NewButton("Thin", func() { s.SelectThickness(palette.Thin) })
	thick := widget.NewButton("Thick", func() { s.SelectThickness(palette.Thick) })

	colors := container.NewHBox()
	for _, c := range palette.Colors {
		colors.Add(newColorSwatch(c, s.SelectColor))
	}

	t.rotation = widget.NewSlider(0, 359)
	t.rotation.Step = 15
	rotation := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), t.rotation)

	t.stickers = container.NewHBox()
	for _, g := range palette.Stickers {
		t.addStickerButton(g)
	}
	custom := widget.NewButtonWithIcon("", theme.ContentAddIcon(), t.showCustomSticker)

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), s.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), s.Redo),
		widget.NewToolbarAction(theme.DeleteIcon(), s.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if t.onExport != nil {
				t.onExport()
			}
		}),
	)

	return t, container.NewHBox(
		widget.NewLabel("Marker:"),
		thin, thick,
		colors,
		widget.NewSeparator(),
		widget.NewLabel("Stickers:"),
		t.stickers, custom,
		rotation,
		widget.NewSeparator(),
		actions,
		layout.NewSpacer(),
	)
}

func (t *Toolbar) addStickerButton(glyph string) {
	t.stickers.Add(widget.NewButton(glyph, func() {
		t.board.Session().ArmSticker(glyph, t.rotation.Value)
	}))
}

// AddCustomSticker arms text as a sticker and adds a palette button for it.
// Blank text does nothing.
func (t *Toolbar) AddCustomSticker(text string, rotation float64) bool {
	s := t.board.Session()
	before := len(s.Palette().Stickers)
	if !s.AddCustomSticker(text, rotation) {
		return false
	}
	after := s.Palette().Stickers
	if len(after) > before {
		t.addStickerButton(after[len(after)-1])
	}
	return true
}

func (t *Toolbar) showCustomSticker() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("text or emoji")
	slider := widget.NewSlider(0, 359)
	slider.Step = 15
	slider.SetValue(t.rotation.Value)
	angle := widget.NewLabel(fmt.Sprintf("%.0f°", slider.Value))
	slider.OnChanged = func(v float64) { angle.SetText(fmt.Sprintf("%.0f°", v)) }

	items := []*widget.FormItem{
		widget.NewFormItem("Sticker", entry),
		widget.NewFormItem("Rotation", container.NewBorder(nil, nil, nil, angle, slider)),
	}
	dialog.ShowForm("Custom sticker", "Arm", "Cancel", items, func(ok bool) {
		if ok {
			t.AddCustomSticker(entry.Text, slider.Value)
		}
	}, t.window)
}
