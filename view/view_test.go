package view

import (
	"strings"
	"testing"

	"github.com/burntcarrot/threadpad/thread"
	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-runewidth"
)

func node(id thread.ID, author, text string, children ...*thread.Node) *thread.Node {
	if children == nil {
		children = []*thread.Node{}
	}
	return &thread.Node{ID: id, Author: author, Text: text, Children: children}
}

func sample() thread.Forest {
	return thread.Forest{
		node("1.1", "alice", "first",
			node("1.2", "bob", "reply",
				node("1.3", "carol", "nested"),
			),
			node("1.4", "dave", "sibling"),
		),
		node("1.5", "erin", "second"),
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten(sample())

	want := []Row{
		{ID: "1.1", Author: "alice", Text: "first", Depth: 0, Replies: 2},
		{ID: "1.2", Author: "bob", Text: "reply", Depth: 1, Replies: 1},
		{ID: "1.3", Author: "carol", Text: "nested", Depth: 2},
		{ID: "1.4", Author: "dave", Text: "sibling", Depth: 1},
		{ID: "1.5", Author: "erin", Text: "second", Depth: 0},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
}

func TestFormatRow(t *testing.T) {
	tests := []struct {
		description string
		row         Row
		width       int
		expected    string
	}{
		{description: "top-level", row: Row{Author: "alice", Text: "hi"},
			expected: "alice: hi"},
		{description: "indented", row: Row{Author: "bob", Text: "yo", Depth: 2},
			expected: "    bob: yo"},
		{description: "one reply", row: Row{Author: "bob", Text: "yo", Replies: 1},
			expected: "bob: yo (1 reply)"},
		{description: "many replies", row: Row{Author: "bob", Text: "yo", Replies: 3},
			expected: "bob: yo (3 replies)"},
		{description: "newlines folded", row: Row{Author: "bob", Text: "a\nb\t c"},
			expected: "bob: a b c"},
		{description: "fits exactly", row: Row{Author: "bob", Text: "yo"}, width: 7,
			expected: "bob: yo"},
	}

	for _, tc := range tests {
		got := FormatRow(tc.row, tc.width)

		if got != tc.expected {
			t.Errorf("(%s) got = %q, expected = %q\n", tc.description, got, tc.expected)
		}
	}
}

// TestFormatRow_Truncate checks that lines never exceed the width, wide runes included.
func TestFormatRow_Truncate(t *testing.T) {
	tests := []struct {
		description string
		row         Row
		width       int
		prefix      string
	}{
		{description: "ascii", row: Row{Author: "alice", Text: "hello world"}, width: 10, prefix: "alice: he"},
		{description: "wide runes", row: Row{Author: "a", Text: "日本語のテキスト"}, width: 6, prefix: "a: "},
		{description: "deep indent", row: Row{Author: "a", Text: "b", Depth: 20}, width: 8, prefix: "      "},
	}

	for _, tc := range tests {
		got := FormatRow(tc.row, tc.width)

		if w := runewidth.StringWidth(got); w > tc.width {
			t.Errorf("(%s) width %d exceeds %d: %q\n", tc.description, w, tc.width, got)
		}
		if !strings.HasPrefix(got, tc.prefix) {
			t.Errorf("(%s) got = %q, expected prefix %q\n", tc.description, got, tc.prefix)
		}
	}
}

func TestMoveCursor(t *testing.T) {
	tests := []struct {
		description    string
		cursor         int
		y              int
		expectedCursor int
		thread         thread.Forest
	}{
		{description: "move down (empty thread)", cursor: 0, y: 1, expectedCursor: 0,
			thread: thread.NewForest()},
		{description: "move up (empty thread)", cursor: 0, y: -1, expectedCursor: 0,
			thread: thread.NewForest()},
		{description: "move down into replies", cursor: 0, y: 1, expectedCursor: 1,
			thread: sample()},
		{description: "move up", cursor: 3, y: -1, expectedCursor: 2,
			thread: sample()},
		{description: "move up (out of bounds)", cursor: 1, y: -10, expectedCursor: 0,
			thread: sample()},
		{description: "move down (out of bounds)", cursor: 3, y: 10, expectedCursor: 4,
			thread: sample()},
	}

	v := NewView(ViewConfig{})

	for _, tc := range tests {
		v.Rows = Flatten(tc.thread)
		v.Cursor = tc.cursor
		v.MoveCursor(tc.y)

		if !cmp.Equal(v.Cursor, tc.expectedCursor) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(v.Cursor, tc.expectedCursor))
		}
	}
}

func TestScroll(t *testing.T) {
	tests := []struct {
		description    string
		y              int
		rowOff         int
		expectedRowOff int
		cursor         int
		expectedCursor int
	}{
		{description: "scroll down",
			y:      1,
			rowOff: 0, expectedRowOff: 1,
			cursor: 2, expectedCursor: 3},
		{description: "scroll up",
			y:      -1,
			rowOff: 2, expectedRowOff: 1,
			cursor: 2, expectedCursor: 1},
		{description: "no scroll inside window",
			y:      1,
			rowOff: 1, expectedRowOff: 1,
			cursor: 1, expectedCursor: 2},
		{description: "jump to the end",
			y:      10,
			rowOff: 0, expectedRowOff: 2,
			cursor: 0, expectedCursor: 4},
	}

	v := NewView(ViewConfig{ScrollEnabled: true})
	v.Width = 40
	v.Height = 3

	for _, tc := range tests {
		v.Rows = Flatten(sample())
		v.RowOff = tc.rowOff
		v.Cursor = tc.cursor

		v.MoveCursor(tc.y)

		if !cmp.Equal(v.Cursor, tc.expectedCursor) {
			t.Errorf("(%s) Wrong cursor: got != expected, diff: %v\n", tc.description, cmp.Diff(v.Cursor, tc.expectedCursor))
		}
		if !cmp.Equal(v.RowOff, tc.expectedRowOff) {
			t.Errorf("(%s) Wrong row offset: got != expected, diff: %v\n", tc.description, cmp.Diff(v.RowOff, tc.expectedRowOff))
		}
	}
}

func TestLines(t *testing.T) {
	v := NewView(ViewConfig{ScrollEnabled: true})
	v.SetSize(40, 2)
	v.SetThread(sample())
	v.MoveCursor(2)

	got := v.Lines()
	want := []string{"  bob: reply (1 reply)", "    carol: nested"}
	if !cmp.Equal(got, want) {
		t.Errorf("got != want; diff = %v\n", cmp.Diff(got, want))
	}
	if got := v.CursorLine(); got != 1 {
		t.Errorf("got cursor line = %d, expected 1\n", got)
	}
}

// TestSetThread checks that the cursor follows the selected comment across updates.
func TestSetThread(t *testing.T) {
	tests := []struct {
		description string
		cursor      int
		next        func(thread.Forest) thread.Forest
		expectedID  thread.ID
	}{
		{description: "comment above removed", cursor: 4,
			next:       func(f thread.Forest) thread.Forest { return thread.Delete(f, "1.1") },
			expectedID: "1.5"},
		{description: "reply inserted above", cursor: 3,
			next: func(f thread.Forest) thread.Forest {
				return thread.InsertReply(f, thread.NewClock(9), "1.2", "zed", "new")
			},
			expectedID: "1.4"},
		{description: "selected comment removed, clamp", cursor: 4,
			next:       func(f thread.Forest) thread.Forest { return thread.Delete(f, "1.5") },
			expectedID: "1.4"},
	}

	for _, tc := range tests {
		v := NewView(ViewConfig{})
		v.SetThread(sample())
		v.Cursor = tc.cursor

		v.SetThread(tc.next(sample()))

		got, ok := v.Selected()
		if !ok || got.ID != tc.expectedID {
			t.Errorf("(%s) got = %v, expected = %v\n", tc.description, got.ID, tc.expectedID)
		}
	}
}

// TestSetThread_Shrink checks the window after most rows disappear.
func TestSetThread_Shrink(t *testing.T) {
	v := NewView(ViewConfig{ScrollEnabled: true})
	v.SetSize(40, 2)
	v.SetThread(sample())
	v.MoveCursor(4)

	v.SetThread(thread.Delete(sample(), "1.5"))
	v.SetThread(thread.Delete(thread.Delete(sample(), "1.5"), "1.2"))

	if v.RowOff != 0 || v.Cursor != 1 {
		t.Errorf("got rowOff = %d, cursor = %d; expected 0, 1\n", v.RowOff, v.Cursor)
	}

	v.SetThread(thread.NewForest())
	if _, ok := v.Selected(); ok || len(v.Lines()) != 0 {
		t.Errorf("empty thread must show nothing")
	}
}
