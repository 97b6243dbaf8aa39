// Package graph holds small directed graphs over integer ids: print-order
// constraints between extrusions ("A before B") and loop containment trees.
// Graphs are built once, validated, then read; nothing mutates them after
// validation.
package graph
