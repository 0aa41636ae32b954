// Package thread implements a threaded discussion as an immutable forest of
// comments.
//
// Every operation takes the current Forest and returns a new one. Only the
// path from the root to the changed node is copied; all other nodes are
// shared between the old and the new forest, so a Forest handed out once may
// be kept and compared freely. Operations that target an id that is not in
// the forest return the forest unchanged.
package thread
