package ui

// Op is a DOM mutation relayed to the browser.
type Op string

const (
	OpPrepend     Op = "prepend"      // insert Node as first child of Target
	OpAppend      Op = "append"       // insert Node as last child of Target
	OpInsertAfter Op = "insert_after" // insert Node right after sibling Ref inside Target
	OpRemove      Op = "remove"       // remove element Target
	OpSetText     Op = "set_text"
	OpSetHTML     Op = "set_html"
	OpSetAttr     Op = "set_attr"
	OpAddClass    Op = "add_class"
	OpRemoveClass Op = "remove_class"
	OpSetDisabled Op = "set_disabled"
	OpSetHidden   Op = "set_hidden"
	OpSetChecked  Op = "set_checked"
	OpSetFiles    Op = "set_files"
)

// Node is an element inserted into a Region.
type Node struct {
	ID    string            `json:"id" msgpack:"id"`
	Class string            `json:"class,omitempty" msgpack:"class,omitempty"`
	Icon  string            `json:"icon,omitempty" msgpack:"icon,omitempty"`
	Text  string            `json:"text,omitempty" msgpack:"text,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
}

func (n *Node) clone() *Node {
	c := *n
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	return &c
}

// FileRef is the browser-visible part of a file in a file input.
type FileRef struct {
	ID   string `json:"id,omitempty" msgpack:"id,omitempty"`
	Name string `json:"name" msgpack:"name"`
	Size int64  `json:"size" msgpack:"size"`
}

// Patch is one mutation of the document.
type Patch struct {
	Op     Op        `json:"op" msgpack:"op"`
	Target string    `json:"target" msgpack:"target"`
	Ref    string    `json:"ref,omitempty" msgpack:"ref,omitempty"`
	Node   *Node     `json:"node,omitempty" msgpack:"node,omitempty"`
	Name   string    `json:"name,omitempty" msgpack:"name,omitempty"`
	Value  string    `json:"value,omitempty" msgpack:"value,omitempty"`
	Flag   bool      `json:"flag,omitempty" msgpack:"flag,omitempty"`
	Files  []FileRef `json:"files,omitempty" msgpack:"files,omitempty"`
}
