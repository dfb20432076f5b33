package pager

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/scrollwatch/internal/viewport"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

// rowText reads a screen row back, trimming trailing blanks.
func rowText(screen tcell.Screen, row int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for col := 0; col < w; {
		mainc, combc, _, width := screen.GetContent(col, row) //nolint:staticcheck // GetContent is the correct API
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
		for _, r := range combc {
			b.WriteRune(r)
		}
		col += max(width, 1)
	}
	return strings.TrimRight(b.String(), " ")
}

func snapshotAt(x, y int) viewport.Snapshot {
	return viewport.Snapshot{
		Scroll:     &viewport.ScrollState{X: x, Y: y},
		Dimensions: &viewport.Dimensions{},
	}
}

func TestDrawAtOrigin(t *testing.T) {
	screen := newSimScreen(t, 20, 3)
	p := New(screen, FromLines([]string{"alpha", "beta", "gamma"}), DefaultTheme())
	p.SetTitle("doc")

	p.Draw(snapshotAt(0, 0), false)

	if got := rowText(screen, 0); got != "alpha" {
		t.Errorf("row 0 = %q, want alpha", got)
	}
	if got := rowText(screen, 1); got != "beta" {
		t.Errorf("row 1 = %q, want beta", got)
	}
	if got := rowText(screen, 2); !strings.HasPrefix(got, "doc  · y:0") {
		t.Errorf("status = %q", got)
	}
}

func TestDrawAtOffset(t *testing.T) {
	screen := newSimScreen(t, 20, 3)
	p := New(screen, FromLines([]string{"alpha", "beta", "gamma"}), DefaultTheme())

	p.Draw(snapshotAt(2, 1), false)

	if got := rowText(screen, 0); got != "ta" {
		t.Errorf("row 0 = %q, want ta", got)
	}
	if got := rowText(screen, 1); got != "mma" {
		t.Errorf("row 1 = %q, want mma", got)
	}
}

func TestDrawPastEnd(t *testing.T) {
	screen := newSimScreen(t, 10, 4)
	p := New(screen, FromLines([]string{"one", "two"}), DefaultTheme())

	p.Draw(snapshotAt(0, 1), false)

	if got := rowText(screen, 0); got != "two" {
		t.Errorf("row 0 = %q, want two", got)
	}
	if got := rowText(screen, 1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}
}

func TestDrawWideClusters(t *testing.T) {
	screen := newSimScreen(t, 10, 2)
	p := New(screen, FromLines([]string{"日本語"}), DefaultTheme())

	p.Draw(snapshotAt(1, 0), false)

	if got := rowText(screen, 0); got != " 本語" {
		t.Errorf("row 0 = %q, want ' 本語'", got)
	}
}

func TestDrawTruncatesAtWidth(t *testing.T) {
	screen := newSimScreen(t, 4, 2)
	p := New(screen, FromLines([]string{"abcdefgh"}), DefaultTheme())

	p.Draw(snapshotAt(0, 0), false)

	if got := rowText(screen, 0); got != "abcd" {
		t.Errorf("row 0 = %q, want abcd", got)
	}
}

func TestSettledStatusStyle(t *testing.T) {
	screen := newSimScreen(t, 60, 2)
	theme := DefaultTheme()
	p := New(screen, FromLines(nil), theme)

	p.Draw(snapshotAt(0, 0), true)

	if got := rowText(screen, 1); !strings.HasSuffix(got, "[settled]") {
		t.Errorf("status = %q, want [settled] suffix", got)
	}
	_, _, style, _ := screen.GetContent(0, 1) //nolint:staticcheck // GetContent is the correct API
	_, gotBg, _ := style.Decompose()
	_, wantBg, _ := theme.Idle.Decompose()
	if gotBg != wantBg {
		t.Errorf("status background = %v, want %v", gotBg, wantBg)
	}
}

func TestStatusLine(t *testing.T) {
	snap := viewport.Snapshot{
		Scroll: &viewport.ScrollState{
			Y:                30,
			IsScrollingUp:    true,
			IsScrollingRight: true,
			YTurn:            50,
			YDTurn:           -20,
		},
		Dimensions: &viewport.Dimensions{
			ClientWidth:    80,
			ClientHeight:   23,
			DocumentWidth:  80,
			DocumentHeight: 1200,
		},
	}

	want := "↑ y:30 turn:50 Δ-20  → x:0 turn:0 Δ+0  80x23 of 80x1200"
	if got := StatusLine(snap); got != want {
		t.Errorf("StatusLine() =\n%q\nwant\n%q", got, want)
	}

	if got := StatusLine(viewport.Snapshot{}); got != "" {
		t.Errorf("empty snapshot status = %q", got)
	}
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme("#ffffff", "#005f87")
	if err != nil {
		t.Fatalf("ParseTheme: %v", err)
	}
	fg, bg, _ := th.Status.Decompose()
	if fg != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("fg = %v", fg)
	}
	if bg != tcell.NewRGBColor(0, 0x5f, 0x87) {
		t.Errorf("bg = %v", bg)
	}
	_, idleBg, _ := th.Idle.Decompose()
	if idleBg == bg {
		t.Error("settled background should differ from the active one")
	}

	for _, bad := range [][2]string{{"white", "#000000"}, {"#ffffff", "#12"}} {
		if _, err := ParseTheme(bad[0], bad[1]); err == nil {
			t.Errorf("ParseTheme(%q, %q) should fail", bad[0], bad[1])
		}
	}
}

func TestDocument(t *testing.T) {
	doc, err := NewDocument(strings.NewReader("a\tb\nwide 日本\n"))
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", doc.Len())
	}
	if got := doc.Line(0); got != "a    b" {
		t.Errorf("Line(0) = %q", got)
	}
	if doc.Width() != 9 {
		t.Errorf("Width() = %d, want 9", doc.Width())
	}
	if doc.Line(-1) != "" || doc.Line(5) != "" {
		t.Error("out of range lines should be empty")
	}
}
