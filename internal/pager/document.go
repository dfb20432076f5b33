package pager

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// TabWidth is the number of cells a tab expands to.
const TabWidth = 4

// Document is an immutable list of display lines.
type Document struct {
	lines []string
	width int
}

// NewDocument reads r line by line.
func NewDocument(r io.Reader) (*Document, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return FromLines(lines), nil
}

// FromLines builds a document from lines, expanding tabs.
func FromLines(lines []string) *Document {
	d := &Document{lines: make([]string, len(lines))}
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", TabWidth))
		d.lines[i] = line
		d.width = max(d.width, uniseg.StringWidth(line))
	}
	return d
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Width returns the display width of the widest line in cells.
func (d *Document) Width() int {
	return d.width
}

// Line returns line i, or "" when out of range.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}
