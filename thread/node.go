package thread

import "encoding/json"

// ID identifies a node. IDs are unique across the whole forest and never reused.
type ID string

// Node represents a comment or a reply in the thread.
//
// Nodes are values once committed to a Forest: operations never write to an
// existing Node, they build new ones along the path they rewrite.
type Node struct {
	ID     ID     `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`

	// Children holds the replies, oldest first. It is empty, never nil.
	Children []*Node `json:"children"`
}

// Forest is the ordered sequence of top-level comments.
type Forest []*Node

// NewForest returns an empty thread.
func NewForest() Forest {
	return Forest{}
}

func newNode(id ID, author, text string) *Node {
	return &Node{ID: id, Author: author, Text: text, Children: []*Node{}}
}

// withText returns a copy of n carrying text.
func (n *Node) withText(text string) *Node {
	c := *n
	c.Text = text
	return &c
}

// withChildren returns a copy of n carrying children.
func (n *Node) withChildren(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}

// UnmarshalJSON keeps Children non-nil for nodes decoded from the wire.
func (n *Node) UnmarshalJSON(data []byte) error {
	type node Node
	var v node
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Children == nil {
		v.Children = []*Node{}
	}
	*n = Node(v)
	return nil
}
