// Package ui draws the HUD and the field controls over the raylib window.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 10, G: 16, B: 28, A: 220},
		PanelBorder:    rl.Color{R: 50, G: 90, B: 110, A: 255},
		SectionHeader:  rl.Color{R: 125, G: 249, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 30, G: 36, B: 48, A: 255},
		BarFill:        rl.Color{R: 94, G: 231, B: 255, A: 200},
		BarFillHigh:    rl.Color{R: 255, G: 140, B: 90, A: 220},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      10,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
