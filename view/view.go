// Package view lays a thread out as terminal lines: one row per comment in
// depth-first order, a row cursor, and a scrolling window over the rows.
package view

import (
	"fmt"
	"strings"

	"github.com/burntcarrot/threadpad/thread"
	"github.com/mattn/go-runewidth"
)

// indentWidth is the number of columns each nesting level is shifted by.
const indentWidth = 2

// Row is a single comment as it appears on screen.
type Row struct {
	ID      thread.ID
	Author  string
	Text    string
	Depth   int
	Replies int
}

// Flatten lists the thread depth-first, every comment followed by its replies.
func Flatten(f thread.Forest) []Row {
	rows := make([]Row, 0, len(f))
	thread.Walk(f, func(n *thread.Node, depth int) bool {
		rows = append(rows, Row{
			ID:      n.ID,
			Author:  n.Author,
			Text:    n.Text,
			Depth:   depth,
			Replies: len(n.Children),
		})
		return true
	})
	return rows
}

type View struct {
	Rows   []Row
	Cursor int
	Width  int
	Height int

	// RowOff is the index of the first visible row.
	RowOff int

	ScrollEnabled bool
}

type ViewConfig struct {
	ScrollEnabled bool
}

func NewView(conf ViewConfig) *View {
	return &View{ScrollEnabled: conf.ScrollEnabled}
}

func (v *View) SetSize(w, h int) {
	v.Width = w
	v.Height = h
	v.scroll()
}

// SetThread re-derives the rows from f. The cursor stays on the same comment
// if it still exists, otherwise it is clamped to the new rows.
func (v *View) SetThread(f thread.Forest) {
	selected, hasSelected := v.Selected()
	v.Rows = Flatten(f)

	if hasSelected {
		for i, r := range v.Rows {
			if r.ID == selected.ID {
				v.Cursor = i
				v.scroll()
				return
			}
		}
	}

	v.Cursor = clamp(v.Cursor, 0, len(v.Rows)-1)
	v.scroll()
}

// Selected returns the row under the cursor.
func (v *View) Selected() (Row, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.Rows) {
		return Row{}, false
	}
	return v.Rows[v.Cursor], true
}

// MoveCursor moves the cursor by y rows, staying within bounds.
func (v *View) MoveCursor(y int) {
	if len(v.Rows) == 0 {
		v.Cursor = 0
		return
	}

	v.Cursor = clamp(v.Cursor+y, 0, len(v.Rows)-1)
	v.scroll()
}

// scroll adjusts RowOff so that the cursor stays inside the window.
func (v *View) scroll() {
	if !v.ScrollEnabled || v.Height <= 0 {
		v.RowOff = 0
		return
	}

	if v.Cursor < v.RowOff {
		v.RowOff = v.Cursor
	}
	if v.Cursor >= v.RowOff+v.Height {
		v.RowOff = v.Cursor - v.Height + 1
	}

	// Don't leave empty space at the bottom after rows were removed.
	v.RowOff = clamp(v.RowOff, 0, len(v.Rows)-v.Height)
}

// Window returns the range of rows that are visible.
func (v *View) Window() (start, end int) {
	start, end = v.RowOff, len(v.Rows)
	if v.ScrollEnabled && v.Height > 0 && start+v.Height < end {
		end = start + v.Height
	}
	return start, end
}

// Lines returns the visible rows, indented by depth and cut to Width.
func (v *View) Lines() []string {
	start, end := v.Window()

	lines := make([]string, 0, end-start)
	for _, r := range v.Rows[start:end] {
		lines = append(lines, FormatRow(r, v.Width))
	}
	return lines
}

// CursorLine returns the position of the cursor within Lines, or -1.
func (v *View) CursorLine() int {
	start, end := v.Window()
	if v.Cursor < start || v.Cursor >= end {
		return -1
	}
	return v.Cursor - start
}

// FormatRow renders r on one line. A width of zero or less means no limit.
func FormatRow(r Row, width int) string {
	text := strings.Join(strings.Fields(r.Text), " ")
	line := fmt.Sprintf("%s%s: %s", strings.Repeat(" ", r.Depth*indentWidth), r.Author, text)

	switch r.Replies {
	case 0:
	case 1:
		line += " (1 reply)"
	default:
		line += fmt.Sprintf(" (%d replies)", r.Replies)
	}

	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	return line
}

func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}
