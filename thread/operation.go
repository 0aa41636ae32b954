package thread

import (
	"errors"
	"fmt"
)

// OperationType represents the operation type, for example, insert, delete.
type OperationType string

const (
	OperationInsert OperationType = "insert"
	OperationReply  OperationType = "reply"
	OperationEdit   OperationType = "edit"
	OperationDelete OperationType = "delete"
)

var (
	ErrEmptyID          = errors.New("empty node ID provided")
	ErrDuplicateID      = errors.New("node ID already present")
	ErrUnknownOperation = errors.New("unknown operation")
)

// Operation is a single change to a thread. Inserts carry the id chosen by
// the site that created them, so the same operation can be replayed anywhere.
type Operation struct {
	Type OperationType `json:"type"`

	// ID is the node created (insert, reply) or targeted (edit, delete).
	ID ID `json:"id"`

	// ParentID is the node replied to. Only set for replies.
	ParentID ID `json:"parentID,omitempty"`

	Author string `json:"author,omitempty"`
	Text   string `json:"text,omitempty"`
}

// NewComment builds an insert operation. It reports false for blank input,
// in which case no id is allocated.
func NewComment(ids IDSource, author, text string) (Operation, bool) {
	if blank(author) || blank(text) {
		return Operation{}, false
	}
	return Operation{Type: OperationInsert, ID: ids.Next(), Author: author, Text: text}, true
}

// NewReply builds a reply operation. It reports false for blank input.
func NewReply(ids IDSource, parent ID, author, text string) (Operation, bool) {
	if blank(author) || blank(text) {
		return Operation{}, false
	}
	return Operation{Type: OperationReply, ID: ids.Next(), ParentID: parent, Author: author, Text: text}, true
}

func NewEdit(id ID, text string) Operation {
	return Operation{Type: OperationEdit, ID: id, Text: text}
}

func NewDelete(id ID) Operation {
	return Operation{Type: OperationDelete, ID: id}
}

// Apply performs op on f. On error f is returned unchanged.
func Apply(f Forest, op Operation) (Forest, error) {
	switch op.Type {
	case OperationInsert, OperationReply:
		if op.ID == "" {
			return f, ErrEmptyID
		}
		if Contains(f, op.ID) {
			return f, fmt.Errorf("%w: %s", ErrDuplicateID, op.ID)
		}
		if blank(op.Author) || blank(op.Text) {
			return f, nil
		}

		n := newNode(op.ID, op.Author, op.Text)
		if op.Type == OperationInsert {
			return appendNode(f, n), nil
		}
		return insertReply(f, op.ParentID, n), nil

	case OperationEdit:
		return Edit(f, op.ID, op.Text), nil

	case OperationDelete:
		return Delete(f, op.ID), nil
	}

	return f, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Type)
}
