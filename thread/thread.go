package thread

import "strings"

///////////////
// Operations
///////////////

// InsertTopLevel appends a new comment to the end of the forest.
// Blank author or text leaves the forest as it is.
func InsertTopLevel(f Forest, ids IDSource, author, text string) Forest {
	if blank(author) || blank(text) {
		return f
	}
	return appendNode(f, newNode(ids.Next(), author, text))
}

// InsertReply appends a new reply to the children of parent, wherever parent is.
func InsertReply(f Forest, ids IDSource, parent ID, author, text string) Forest {
	if blank(author) || blank(text) || !Contains(f, parent) {
		return f
	}
	return insertReply(f, parent, newNode(ids.Next(), author, text))
}

// Edit replaces the text of the node with the given id.
func Edit(f Forest, id ID, text string) Forest {
	nodes, _ := rewrite(f, id, func(n *Node) []*Node {
		return []*Node{n.withText(text)}
	})
	return nodes
}

// Delete removes the node with the given id along with all of its replies.
func Delete(f Forest, id ID) Forest {
	nodes, _ := rewrite(f, id, func(*Node) []*Node {
		return nil
	})
	return nodes
}

func insertReply(f Forest, parent ID, reply *Node) Forest {
	nodes, _ := rewrite(f, parent, func(n *Node) []*Node {
		return []*Node{n.withChildren(appendNode(n.Children, reply))}
	})
	return nodes
}

// rewrite finds the node with the given id and replaces it by whatever fn
// returns. Every ancestor of the match is copied; everything else is shared.
// The input slice is returned untouched when id is not present.
func rewrite(nodes []*Node, id ID, fn func(*Node) []*Node) ([]*Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			repl := fn(n)
			out := make([]*Node, 0, len(nodes)-1+len(repl))
			out = append(out, nodes[:i]...)
			out = append(out, repl...)
			out = append(out, nodes[i+1:]...)
			return out, true
		}

		if children, ok := rewrite(n.Children, id, fn); ok {
			out := make([]*Node, len(nodes))
			copy(out, nodes)
			out[i] = n.withChildren(children)
			return out, true
		}
	}

	return nodes, false
}

// appendNode never writes into the backing array of nodes, which may be shared.
func appendNode(nodes []*Node, n *Node) []*Node {
	out := make([]*Node, len(nodes), len(nodes)+1)
	copy(out, nodes)
	return append(out, n)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

//////////////////////
// Utility functions
//////////////////////

// Walk visits every node depth-first, each node before its replies.
// Returning false from fn skips the node's replies.
func Walk(f Forest, fn func(n *Node, depth int) bool) {
	walk(f, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Find returns the node with the given id.
func Find(f Forest, id ID) (*Node, bool) {
	return find(f, id)
}

func find(nodes []*Node, id ID) (*Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := find(n.Children, id); ok {
			return found, true
		}
	}
	return nil, false
}

// Contains checks if a node is present anywhere in the forest.
func Contains(f Forest, id ID) bool {
	_, ok := Find(f, id)
	return ok
}

// Len returns the number of nodes in the forest, replies included.
func Len(f Forest) int {
	count := 0
	Walk(f, func(*Node, int) bool {
		count++
		return true
	})
	return count
}
