package render

import (
	"unicode/utf8"
)

const (
	MinZoom = 0
	MaxZoom = 22

	// Labels fade in between these zoom levels.
	LabelFadeStartZoom = 10.0
	LabelFadeEndZoom   = 15.0

	// Titles longer than this shrink proportionally.
	TitleShrinkRunes = 20
	// Shrunk titles never go below this fraction of the base font size.
	TitleMinFontRatio = 0.7
	// Titles are cut with an ellipsis past this length.
	TitleMaxRunes = 48

	// Target and nearby markers are drawn this many pixels larger.
	HighlightExtraPx = 6
)

// Scale is the zoom dependent size of markers and labels.
type Scale struct {
	MarkerSize int     `json:"marker_size"`
	FontSize   float64 `json:"font_size"`
}

// zoomSteps maps the lowest zoom of each step to its scale. Steps must be
// ascending in both zoom and size.
var zoomSteps = []struct {
	zoom  int
	scale Scale
}{
	{0, Scale{MarkerSize: 16, FontSize: 9}},
	{9, Scale{MarkerSize: 20, FontSize: 10}},
	{11, Scale{MarkerSize: 24, FontSize: 11}},
	{13, Scale{MarkerSize: 28, FontSize: 12}},
	{15, Scale{MarkerSize: 32, FontSize: 13}},
	{17, Scale{MarkerSize: 36, FontSize: 14}},
}

// scaleByZoom is zoomSteps expanded for every zoom level.
var scaleByZoom = func() [MaxZoom + 1]Scale {
	var table [MaxZoom + 1]Scale
	step := 0
	for z := MinZoom; z <= MaxZoom; z++ {
		for step+1 < len(zoomSteps) && zoomSteps[step+1].zoom <= z {
			step++
		}
		table[z] = zoomSteps[step].scale
	}
	return table
}()

// ScaleFor returns the scale at zoom, clamped to [MinZoom, MaxZoom].
func ScaleFor(zoom int) Scale {
	return scaleByZoom[clampZoom(zoom)]
}

func clampZoom(zoom int) int {
	switch {
	case zoom < MinZoom:
		return MinZoom
	case zoom > MaxZoom:
		return MaxZoom
	default:
		return zoom
	}
}

// LabelOpacity returns the label opacity at zoom. When forceText is set the
// label is always fully opaque.
func LabelOpacity(zoom float64, forceText bool) float64 {
	if forceText {
		return 1
	}
	switch {
	case zoom <= LabelFadeStartZoom:
		return 0
	case zoom >= LabelFadeEndZoom:
		return 1
	default:
		return (zoom - LabelFadeStartZoom) / (LabelFadeEndZoom - LabelFadeStartZoom)
	}
}

// TitleFontSize shrinks base for long titles.
func TitleFontSize(title string, base float64) float64 {
	n := utf8.RuneCountInString(title)
	if n <= TitleShrinkRunes {
		return base
	}
	size := base * TitleShrinkRunes / float64(n)
	if floor := base * TitleMinFontRatio; size < floor {
		return floor
	}
	return size
}

// TruncateTitle cuts title to TitleMaxRunes runes.
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= TitleMaxRunes {
		return title
	}
	runes := []rune(title)
	return string(runes[:TitleMaxRunes]) + "…"
}
