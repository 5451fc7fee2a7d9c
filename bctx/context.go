// Package bctx implements the ambient key-value tree shared across a
// record traversal: a value tree passed alongside a record to
// binread/binwrite that a field's CtxSet/CtxGet hooks and the expression
// resolver's "_ctx." prefix can reach, for sharing out-of-band values
// across records (e.g. a BSON document's running byte-length, a DTB
// string table offset).
//
// Named bctx rather than context to avoid colliding with the standard
// library's context.Context, which this package has no relation to: the
// tree is a plain mutable value store, not a cancellation/deadline
// carrier.
//
// A small stateful map wrapper addressed by dotted paths.
package bctx

import "strings"

// Context is an ambient key-value tree. The zero value is not usable;
// construct with New.
type Context struct {
	root map[string]any
}

// New returns an empty Context.
func New() *Context {
	return &Context{root: make(map[string]any)}
}

// Set writes value at the dotted path, creating intermediate maps as
// needed. An empty path segment (leading/trailing/doubled dot) is not
// rejected; it becomes an empty-string key.
func (c *Context) Set(path string, value any) {
	segs := strings.Split(path, ".")
	node := c.root

	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[seg] = next
		}
		node = next
	}

	node[segs[len(segs)-1]] = value
}

// Get reads the value at the dotted path. ok is false if any segment of
// the path is absent.
func (c *Context) Get(path string) (value any, ok bool) {
	segs := strings.Split(path, ".")
	node := c.root

	for _, seg := range segs[:len(segs)-1] {
		next, isMap := node[seg].(map[string]any)
		if !isMap {
			return nil, false
		}
		node = next
	}

	v, exists := node[segs[len(segs)-1]]
	return v, exists
}

// Root returns the underlying tree, for callers (the expression
// resolver) that need to traverse it alongside a record's own fields.
func (c *Context) Root() map[string]any {
	return c.root
}
