package main

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/burntcarrot/threadpad/commons"
	"github.com/burntcarrot/threadpad/thread"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// scriptedConn replays a fixed list of messages, then returns io.EOF.
type scriptedConn struct {
	msgs []commons.Message
}

func (c *scriptedConn) ReadJSON(v interface{}) error {
	if len(c.msgs) == 0 {
		return io.EOF
	}
	data, err := json.Marshal(c.msgs[0])
	if err != nil {
		return err
	}
	c.msgs = c.msgs[1:]
	return json.Unmarshal(data, v)
}

func TestHandshake(t *testing.T) {
	f := thread.Forest{{ID: "1.1", Author: "alice", Text: "hi", Children: []*thread.Node{}}}

	tests := []struct {
		description string
		msgs        []commons.Message
		siteID      uint32
		thread      thread.Forest
		err         error
	}{
		{description: "site ID then sync",
			msgs: []commons.Message{
				{Type: commons.SiteIDMessage, Text: "3"},
				{Type: commons.DocSyncMessage, Thread: f},
			},
			siteID: 3, thread: f},
		{description: "other messages in between",
			msgs: []commons.Message{
				{Type: commons.UsersMessage, Users: []string{"alice"}},
				{Type: commons.DocSyncMessage, Thread: f},
				{Type: commons.SiteIDMessage, Text: "12"},
			},
			siteID: 12, thread: f},
		{description: "empty thread",
			msgs: []commons.Message{
				{Type: commons.SiteIDMessage, Text: "1"},
				{Type: commons.DocSyncMessage},
			},
			siteID: 1, thread: thread.NewForest()},
		{description: "bad site ID",
			msgs: []commons.Message{{Type: commons.SiteIDMessage, Text: "x"}},
			err:  ErrHandshake},
		{description: "connection closed",
			msgs: []commons.Message{{Type: commons.SiteIDMessage, Text: "1"}},
			err:  ErrHandshake},
	}

	for _, tc := range tests {
		siteID, got, err := handshake(&scriptedConn{msgs: tc.msgs})

		if !errors.Is(err, tc.err) {
			t.Errorf("(%s) got error %v, expected %v\n", tc.description, err, tc.err)
			continue
		}
		if siteID != tc.siteID {
			t.Errorf("(%s) got site ID = %v, expected = %v\n", tc.description, siteID, tc.siteID)
		}
		if !cmp.Equal(got, tc.thread, cmpopts.EquateEmpty()) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.thread))
		}
	}
}
