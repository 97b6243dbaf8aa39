package graph

import (
	"fmt"
	"slices"
)

// NodeID identifies a node, usually the index of the item it stands for.
type NodeID int

// Node is one vertex with its outgoing edges.
type Node struct {
	ID       NodeID
	Children []NodeID
}

// Graph is a directed graph. Edges run from parent to child; for ordering
// constraints that means "parent prints before child".
type Graph struct {
	Nodes map[NodeID]*Node
	Roots []NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{Nodes: make(map[NodeID]*Node)}
}

// AddNode adds a node if missing and returns it.
func (g *Graph) AddNode(id NodeID) *Node {
	if n, ok := g.Nodes[id]; ok {
		return n
	}
	n := &Node{ID: id}
	g.Nodes[id] = n
	return n
}

// AddEdge records from → to, creating both nodes. Repeated edges are kept
// once.
func (g *Graph) AddEdge(from, to NodeID) {
	n := g.AddNode(from)
	g.AddNode(to)
	if !slices.Contains(n.Children, to) {
		n.Children = append(n.Children, to)
	}
}

// AddRoot registers a node as a root of the graph.
func (g *Graph) AddRoot(id NodeID) {
	g.AddNode(id)
	g.Roots = append(g.Roots, id)
}

// Get returns the node with the given ID, or nil.
func (g *Graph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// MustGet returns the node with the given ID, or panics.
func (g *Graph) MustGet(id NodeID) *Node {
	n := g.Get(id)
	if n == nil {
		panic(fmt.Sprintf("graph: no node %d", id))
	}
	return n
}

// IDs returns every node ID in ascending order.
func (g *Graph) IDs() []NodeID {
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// InDegree returns the number of incoming edges per node.
func (g *Graph) InDegree() map[NodeID]int {
	in := make(map[NodeID]int, len(g.Nodes))
	for _, id := range g.IDs() {
		if _, ok := in[id]; !ok {
			in[id] = 0
		}
		for _, c := range g.Nodes[id].Children {
			in[c]++
		}
	}
	return in
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	var n int
	for _, node := range g.Nodes {
		n += len(node.Children)
	}
	return n
}
