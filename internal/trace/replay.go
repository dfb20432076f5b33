package trace

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/scrollwatch/internal/viewport"
	"github.com/dshills/scrollwatch/internal/window"
)

// maxLine bounds a single record.
const maxLine = 1 << 20

// Parse reads a recording. Blank lines are skipped.
func Parse(r io.Reader) (Trace, error) {
	var tr Trace

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return Trace{}, fmt.Errorf("line %d: %w", lineNo, ErrMalformed)
		}

		rec := gjson.ParseBytes(line)
		at := time.Duration(rec.Get("t").Int()) * time.Millisecond
		switch kind := rec.Get("kind").String(); kind {
		case KindScroll:
			tr.Samples = append(tr.Samples, Sample{
				At:   at,
				Kind: kind,
				X:    int(rec.Get("x").Int()),
				Y:    int(rec.Get("y").Int()),
			})
		case KindResize, KindOrientation:
			tr.Samples = append(tr.Samples, Sample{
				At:      at,
				Kind:    kind,
				Metrics: parseMetrics(rec),
			})
		case KindUpdate:
			tr.Updates = append(tr.Updates, parseUpdate(at, rec))
		default:
			return Trace{}, fmt.Errorf("line %d: unknown kind %q: %w", lineNo, kind, ErrMalformed)
		}
	}
	if err := sc.Err(); err != nil {
		return Trace{}, fmt.Errorf("reading trace: %w", err)
	}
	return tr, nil
}

// ParseFile reads a recording from path.
func ParseFile(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, fmt.Errorf("opening trace %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func parseMetrics(rec gjson.Result) window.Metrics {
	return window.Metrics{
		Inner:    parseSize(rec.Get("inner")),
		Outer:    parseSize(rec.Get("outer")),
		Document: parseBox(rec.Get("document")),
		Body:     parseBox(rec.Get("body")),
	}
}

func parseSize(v gjson.Result) window.Size {
	return window.Size{
		Width:  int(v.Get("w").Int()),
		Height: int(v.Get("h").Int()),
	}
}

func parseBox(v gjson.Result) window.Box {
	return window.Box{
		ClientWidth:  int(v.Get("client_w").Int()),
		ClientHeight: int(v.Get("client_h").Int()),
		ScrollWidth:  int(v.Get("scroll_w").Int()),
		ScrollHeight: int(v.Get("scroll_h").Int()),
		OffsetWidth:  int(v.Get("offset_w").Int()),
		OffsetHeight: int(v.Get("offset_h").Int()),
	}
}

func parseUpdate(at time.Duration, rec gjson.Result) UpdateRecord {
	u := UpdateRecord{
		At:      at,
		Cadence: rec.Get("cadence").String(),
		Flags: viewport.Flags{
			ScrollDidUpdate:     rec.Get("flags.scroll").Bool(),
			DimensionsDidUpdate: rec.Get("flags.dimensions").Bool(),
		},
	}
	if sc := rec.Get("scroll"); sc.Exists() {
		u.Scroll = &viewport.ScrollState{
			X:                int(sc.Get("x").Int()),
			Y:                int(sc.Get("y").Int()),
			IsScrollingUp:    sc.Get("up").Bool(),
			IsScrollingDown:  sc.Get("down").Bool(),
			IsScrollingLeft:  sc.Get("left").Bool(),
			IsScrollingRight: sc.Get("right").Bool(),
			XTurn:            int(sc.Get("x_turn").Int()),
			YTurn:            int(sc.Get("y_turn").Int()),
			XDTurn:           int(sc.Get("dx_turn").Int()),
			YDTurn:           int(sc.Get("dy_turn").Int()),
		}
	}
	if d := rec.Get("dimensions"); d.Exists() {
		u.Dimensions = &viewport.Dimensions{
			Width:          int(d.Get("width").Int()),
			Height:         int(d.Get("height").Int()),
			ClientWidth:    int(d.Get("client_width").Int()),
			ClientHeight:   int(d.Get("client_height").Int()),
			OuterWidth:     int(d.Get("outer_width").Int()),
			OuterHeight:    int(d.Get("outer_height").Int()),
			DocumentWidth:  int(d.Get("document_width").Int()),
			DocumentHeight: int(d.Get("document_height").Int()),
		}
	}
	return u
}

// PlayOption configures Play.
type PlayOption func(*player)

// WithPacing replays samples at their recorded times instead of back to back.
func WithPacing() PlayOption {
	return func(p *player) {
		p.paced = true
	}
}

// WithAfterSample is called after each sample is applied, for example to
// step a manual frame scheduler.
func WithAfterSample(fn func(Sample)) PlayOption {
	return func(p *player) {
		p.after = fn
	}
}

type player struct {
	paced bool
	after func(Sample)
}

// Play applies the recorded samples to win in order. Scroll samples move the
// offset; resize and orientation samples replace the geometry and fire the
// matching event.
func Play(ctx context.Context, tr Trace, win *window.Null, opts ...PlayOption) error {
	p := &player{}
	for _, opt := range opts {
		opt(p)
	}

	var prev time.Duration
	for _, s := range tr.Samples {
		if p.paced && s.At > prev {
			if err := sleep(ctx, s.At-prev); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		prev = s.At

		switch s.Kind {
		case KindScroll:
			win.ScrollTo(s.X, s.Y)
		case KindResize:
			win.Resize(s.Metrics)
		case KindOrientation:
			win.Rotate(s.Metrics)
		}
		if p.after != nil {
			p.after(s)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
