// Package formats provides readers and writers for game content file formats.
package formats

// Note: MLOD/P3DM models are implemented in p3d.go (reader) and p3d_write.go (writer)
// Note: LOD tag tables are implemented in tagtable.go
