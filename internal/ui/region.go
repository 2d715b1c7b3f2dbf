package ui

import "fmt"

// Region is a container the controllers insert nodes into.
type Region struct {
	id    string
	nodes []*Node
	doc   *Document
}

// ID returns the container id.
func (r *Region) ID() string { return r.id }

// Len returns the number of nodes.
func (r *Region) Len() int { return len(r.nodes) }

// Nodes returns copies of the nodes in display order.
func (r *Region) Nodes() []Node {
	out := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, *n.clone())
	}
	return out
}

// First returns the first node or nil.
func (r *Region) First() *Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0].clone()
}

// Find returns the node with id or nil.
func (r *Region) Find(id string) *Node {
	if i := r.index(id); i >= 0 {
		return r.nodes[i].clone()
	}
	return nil
}

// LastOfClass returns the last node whose class is class, or nil.
func (r *Region) LastOfClass(class string) *Node {
	for i := len(r.nodes) - 1; i >= 0; i-- {
		if r.nodes[i].Class == class {
			return r.nodes[i].clone()
		}
	}
	return nil
}

// Prepend inserts n as the first node.
func (r *Region) Prepend(n Node) {
	r.nodes = append([]*Node{&n}, r.nodes...)
	r.doc.emit(Patch{Op: OpPrepend, Target: r.id, Node: n.clone()})
}

// Append inserts n as the last node.
func (r *Region) Append(n Node) {
	r.nodes = append(r.nodes, &n)
	r.doc.emit(Patch{Op: OpAppend, Target: r.id, Node: n.clone()})
}

// InsertAfter inserts n directly after the node with id ref.
func (r *Region) InsertAfter(ref string, n Node) error {
	i := r.index(ref)
	if i < 0 {
		return fmt.Errorf("ui: %s has no node %q", r.id, ref)
	}
	r.nodes = append(r.nodes, nil)
	copy(r.nodes[i+2:], r.nodes[i+1:])
	r.nodes[i+1] = &n
	r.doc.emit(Patch{Op: OpInsertAfter, Target: r.id, Ref: ref, Node: n.clone()})
	return nil
}

// InsertAfterFirst inserts n after the first node, or as the only node of an empty
// region.
func (r *Region) InsertAfterFirst(n Node) {
	if len(r.nodes) == 0 {
		r.Prepend(n)
		return
	}
	ref := r.nodes[0].ID
	r.nodes = append(r.nodes, nil)
	copy(r.nodes[2:], r.nodes[1:])
	r.nodes[1] = &n
	r.doc.emit(Patch{Op: OpInsertAfter, Target: r.id, Ref: ref, Node: n.clone()})
}

// Remove deletes the node with id and reports whether it was present.
func (r *Region) Remove(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
	r.doc.emit(Patch{Op: OpRemove, Target: id})
	return true
}

// SetText changes a node's text.
func (r *Region) SetText(id, text string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.nodes[i].Text = text
	r.doc.emit(Patch{Op: OpSetText, Target: id, Value: text})
	return true
}

// SetAttr changes a node attribute.
func (r *Region) SetAttr(id, name, value string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	if r.nodes[i].Attrs == nil {
		r.nodes[i].Attrs = make(map[string]string)
	}
	r.nodes[i].Attrs[name] = value
	r.doc.emit(Patch{Op: OpSetAttr, Target: id, Name: name, Value: value})
	return true
}

func (r *Region) index(id string) int {
	for i, n := range r.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
