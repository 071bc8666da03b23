// Package cullthrottle schedules per-frame visibility culling and
// staggered update refresh for large populations of spatially-located
// objects viewed by a single camera.
package cullthrottle
