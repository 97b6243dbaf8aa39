package graph

import "fmt"

// ValidationSeverity indicates whether a finding makes the graph unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // graph unusable as given
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // node with the problem, -1 if graph-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.NodeID, e.Message)
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate runs the structural checks and returns the findings in a
// deterministic order. An empty slice means the graph is a well-formed DAG.
// Validate never mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateSelfEdges(g)...)
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateRoots(g)...)
	return errs
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %d is part of a cycle", id),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			color[id] = black
			return false
		}
		for _, child := range node.Children {
			if child == id {
				continue // reported by validateSelfEdges
			}
			if visit(child) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.IDs() {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child ID exists.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.IDs() {
		for _, child := range g.Nodes[id].Children {
			if _, ok := g.Nodes[child]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %d does not exist", child),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateSelfEdges reports nodes that point at themselves.
func validateSelfEdges(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.IDs() {
		for _, child := range g.Nodes[id].Children {
			if child == id {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  "node is its own child",
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateRoots checks that every root exists and, when roots are declared,
// warns about nodes unreachable from them.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError
	if len(g.Roots) == 0 {
		return nil
	}

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				NodeID:   -1,
				Message:  fmt.Sprintf("root reference %d does not exist", rid),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, child := range node.Children {
			if !reachable[child] {
				reachable[child] = true
				queue = append(queue, child)
			}
		}
	}

	for _, id := range g.IDs() {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %d is not reachable from any root (orphan)", id),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
