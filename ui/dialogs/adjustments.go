package dialogs

import (
	"fmt"

	"pixelforge/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// sliderWithLabel pairs a slider with a live value readout.
func sliderWithLabel(min, max, value float64, format string) (*widget.Slider, fyne.CanvasObject) {
	label := widget.NewLabel(fmt.Sprintf(format, value))
	slider := widget.NewSlider(min, max)
	slider.SetValue(value)
	slider.OnChanged = func(v float64) {
		label.SetText(fmt.Sprintf(format, v))
	}
	return slider, container.NewVBox(label, slider)
}

// ShowBrightnessContrast runs the combined brightness and contrast
// adjustment on the active layer.
func ShowBrightnessContrast(win fyne.Window, state *app.State) {
	brightness, brightnessBox := sliderWithLabel(-255, 255, 0, "Brightness: %.0f")
	contrast, contrastBox := sliderWithLabel(-100, 100, 0, "Contrast: %.0f")

	content := container.NewVBox(brightnessBox, contrastBox)
	dialog.ShowCustomConfirm("Brightness / Contrast", "Apply", "Cancel", content,
		func(ok bool) {
			if !ok {
				return
			}
			if brightness.Value != 0 {
				state.ApplyAdjustment(app.AdjustBrightness, brightness.Value, 0)
			}
			if contrast.Value != 0 {
				state.ApplyAdjustment(app.AdjustContrast, contrast.Value, 0)
			}
		}, win)
}

// ShowHueSaturation runs the hue shift and saturation scale adjustment.
func ShowHueSaturation(win fyne.Window, state *app.State) {
	hue, hueBox := sliderWithLabel(-180, 180, 0, "Hue Shift: %.0f deg")
	sat, satBox := sliderWithLabel(0, 200, 100, "Saturation: %.0f%%")

	content := container.NewVBox(hueBox, satBox)
	dialog.ShowCustomConfirm("Hue / Saturation", "Apply", "Cancel", content,
		func(ok bool) {
			if !ok {
				return
			}
			state.ApplyAdjustment(app.AdjustHueSaturation, hue.Value, sat.Value/100)
		}, win)
}

// ShowAutoContrast runs auto-contrast with a configurable clip percentile.
func ShowAutoContrast(win fyne.Window, state *app.State) {
	clip, clipBox := sliderWithLabel(0, 10, 1, "Clip: %.1f%%")

	dialog.ShowCustomConfirm("Auto Contrast", "Apply", "Cancel", clipBox,
		func(ok bool) {
			if !ok {
				return
			}
			state.ApplyAdjustment(app.AdjustAutoContrast, clip.Value, 0)
		}, win)
}

// ShowFilter runs one of the convolution filters with a radius or amount
// parameter.
func ShowFilter(win fyne.Window, state *app.State, f app.Filter) {
	var title, format string
	var min, max, value float64
	switch f {
	case app.FilterGaussianBlur:
		title, format = "Gaussian Blur", "Radius: %.0f px"
		min, max, value = 1, 50, 4
	case app.FilterMedianBlur:
		title, format = "Median Blur", "Radius: %.0f px"
		min, max, value = 1, 25, 2
	case app.FilterSharpen:
		title, format = "Sharpen", "Amount: %.1f"
		min, max, value = 0.1, 3, 0.8
	}

	amount, amountBox := sliderWithLabel(min, max, value, format)
	dialog.ShowCustomConfirm(title, "Apply", "Cancel", amountBox,
		func(ok bool) {
			if !ok {
				return
			}
			if err := state.ApplyFilter(f, amount.Value); err != nil {
				dialog.ShowError(err, win)
			}
		}, win)
}

// ShowInpaint runs content-aware fill over the current selection.
func ShowInpaint(win fyne.Window, state *app.State) {
	if !state.Canvas.HasSelection() {
		dialog.ShowInformation("Content-Aware Fill",
			"Select the region to fill first.", win)
		return
	}
	radius, radiusBox := sliderWithLabel(1, 30, 8, "Radius: %.0f px")

	dialog.ShowCustomConfirm("Content-Aware Fill", "Apply", "Cancel", radiusBox,
		func(ok bool) {
			if !ok {
				return
			}
			if err := state.InpaintSelection(radius.Value); err != nil {
				dialog.ShowError(err, win)
			}
		}, win)
}
