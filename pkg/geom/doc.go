// Package geom defines the fixed-point 2D geometry model shared by the
// toolpath packages: points, polygons, polylines, regions with holes and
// variable-width polylines. Coordinates are scaled integers (1 mm = Scale
// units) so boolean operations never accumulate floating-point drift.
package geom
