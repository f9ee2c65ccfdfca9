package formats

import (
	"github.com/chewxy/math32"
)

// LODStats summarizes a single LOD.
type LODStats struct {
	Resolution float32
	Points     int
	Normals    int
	Faces      int
	Triangles  int
	Quads      int
	Tags       int
	Min, Max   [3]float32 // Bounding box; zero when the LOD has no points
}

// Bounds returns the axis-aligned bounding box of the LOD's points.
// ok is false when there are no points.
func (lod *LOD) Bounds() (lo, hi [3]float32, ok bool) {
	if len(lod.Points) == 0 {
		return lo, hi, false
	}

	lo = [3]float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi = [3]float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, p := range lod.Points {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = math32.Min(lo[axis], p.Coords[axis])
			hi[axis] = math32.Max(hi[axis], p.Coords[axis])
		}
	}
	return lo, hi, true
}

// Stats returns per-LOD statistics in file order.
func (p *P3D) Stats() []LODStats {
	stats := make([]LODStats, len(p.LODs))
	for i := range p.LODs {
		lod := &p.LODs[i]
		s := &stats[i]
		s.Resolution = lod.Resolution
		s.Points = len(lod.Points)
		s.Normals = len(lod.FaceNormals)
		s.Faces = len(lod.Faces)
		s.Tags = lod.Taggs.Len()
		for _, f := range lod.Faces {
			if len(f.Vertices) == 3 {
				s.Triangles++
			} else {
				s.Quads++
			}
		}
		s.Min, s.Max, _ = lod.Bounds()
	}
	return stats
}

// GetTotalFaceCount returns the total number of faces across all LODs.
func (p *P3D) GetTotalFaceCount() int {
	total := 0
	for _, lod := range p.LODs {
		total += len(lod.Faces)
	}
	return total
}

// Textures returns the distinct texture paths in order of first use.
func (p *P3D) Textures() []string {
	seen := make(map[string]bool)
	var out []string
	for _, lod := range p.LODs {
		for _, f := range lod.Faces {
			if f.Texture == "" || seen[f.Texture] {
				continue
			}
			seen[f.Texture] = true
			out = append(out, f.Texture)
		}
	}
	return out
}

// ReplaceTexture sets every face using texture from to texture to and returns
// the number of faces changed.
func (p *P3D) ReplaceTexture(from, to string) int {
	changed := 0
	for i := range p.LODs {
		faces := p.LODs[i].Faces
		for j := range faces {
			if faces[j].Texture == from {
				faces[j].Texture = to
				changed++
			}
		}
	}
	return changed
}

// Face returns the face at the given position, or nil if out of range.
func (p *P3D) Face(lod, face int) *Face {
	if lod < 0 || lod >= len(p.LODs) {
		return nil
	}
	faces := p.LODs[lod].Faces
	if face < 0 || face >= len(faces) {
		return nil
	}
	return &faces[face]
}
