// Package halfedge builds and queries the half-edge connectivity of a
// triangle mesh.
//
// Triangle t owns half-edges 3t, 3t+1 and 3t+2, running from corner i to
// corner i+1. Every interior edge is represented by exactly two half-edges
// that name each other as pairs and run in opposite directions. A
// half-edge with no partner is an open boundary and carries NoPair.
//
// A Topology is immutable once built. It may be read from any number of
// goroutines; a change of connectivity means building a new one.
package halfedge

import "fmt"

// NoPair marks a boundary half-edge.
const NoPair = -1

// Halfedge is one directed side of a triangle.
type Halfedge struct {
	StartVert      int
	EndVert        int
	PairedHalfedge int
	Face           int
}

// IsForward reports whether the half-edge runs from the lower vertex index
// to the higher. Of two paired half-edges exactly one is forward, which
// makes it the canonical representative of their edge.
func (h Halfedge) IsForward() bool {
	return h.StartVert < h.EndVert
}

// IsBoundary reports whether h has no pair.
func (h Halfedge) IsBoundary() bool {
	return h.PairedHalfedge == NoPair
}

// Less orders half-edges by StartVert, then EndVert.
func (h Halfedge) Less(o Halfedge) bool {
	if h.StartVert == o.StartVert {
		return h.EndVert < o.EndVert
	}
	return h.StartVert < o.StartVert
}

func (h Halfedge) String() string {
	return fmt.Sprintf("startVert = %d, endVert = %d, pairedHalfedge = %d, face = %d",
		h.StartVert, h.EndVert, h.PairedHalfedge, h.Face)
}

// key returns the half-edge with its endpoints sorted, so both halves of
// an edge compare equal under Less.
func (h Halfedge) key() Halfedge {
	if h.IsForward() {
		return Halfedge{StartVert: h.StartVert, EndVert: h.EndVert}
	}
	return Halfedge{StartVert: h.EndVert, EndVert: h.StartVert}
}

// Next returns the half-edge following e around its triangle.
func Next(e int) int {
	if e%3 == 2 {
		return e - 2
	}
	return e + 1
}

// Prev returns the half-edge preceding e around its triangle.
func Prev(e int) int {
	if e%3 == 0 {
		return e + 2
	}
	return e - 1
}
