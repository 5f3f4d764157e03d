package graph

import (
	"time"
)

// Node is a stored graph node: a schema node (Class, Property) or a data
// record. Properties round-trip through a JSON column, so values come back
// as the encoding/json scalar types (string, float64, bool, nil).
type Node struct {
	ID         int64          `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// StringProperty returns the named property as a string, or "" if absent or
// not a string.
func (n *Node) StringProperty(name string) string {
	if v, ok := n.Properties[name].(string); ok {
		return v
	}
	return ""
}

// BoolProperty returns the named property as a bool, false if absent.
func (n *Node) BoolProperty(name string) bool {
	v, ok := n.Properties[name].(bool)
	return ok && v
}

// Edge is a stored directed edge between two nodes.
type Edge struct {
	ID         int64          `json:"id"`
	Source     int64          `json:"source"`
	Target     int64          `json:"target"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Stats summarizes the stored graph for diagnostics.
type Stats struct {
	TotalNodes  int `json:"total_nodes"`
	TotalEdges  int `json:"total_edges"`
	ClassNodes  int `json:"class_nodes"`
	PropNodes   int `json:"property_nodes"`
	DataRecords int `json:"data_records"`
}
