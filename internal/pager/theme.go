package pager

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the pager styles.
type Theme struct {
	Text   tcell.Style
	Status tcell.Style
	// Idle is the status style once scrolling has settled.
	Idle tcell.Style
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	th, _ := ParseTheme("#e4e4e4", "#005f87")
	return th
}

// ParseTheme builds a theme from hex status colours. The settled status
// background is a darker blend of bg towards black.
func ParseTheme(fg, bg string) (Theme, error) {
	fc, err := colorful.Hex(fg)
	if err != nil {
		return Theme{}, fmt.Errorf("status foreground %q: %w", fg, err)
	}
	bc, err := colorful.Hex(bg)
	if err != nil {
		return Theme{}, fmt.Errorf("status background %q: %w", bg, err)
	}
	settled := bc.BlendLab(colorful.Color{}, 0.35).Clamped()

	return Theme{
		Text:   tcell.StyleDefault,
		Status: tcell.StyleDefault.Foreground(toTcell(fc)).Background(toTcell(bc)),
		Idle:   tcell.StyleDefault.Foreground(toTcell(fc)).Background(toTcell(settled)),
	}, nil
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
