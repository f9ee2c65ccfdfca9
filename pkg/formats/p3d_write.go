package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/Faultbox/signmaker/pkg/binio"
	"github.com/Faultbox/signmaker/pkg/stream"
)

// Write serializes the document to w. Counts are taken from slice lengths.
func (p *P3D) Write(w io.Writer) error {
	pw := &p3dWriter{w: bufio.NewWriter(w)}

	pw.bytes([]byte(MagicMLOD))
	pw.u32(p.Version)
	pw.count(len(p.LODs))
	if pw.err != nil {
		return pw.err
	}

	for i := range p.LODs {
		if err := pw.writeLOD(&p.LODs[i]); err != nil {
			return fmt.Errorf("LOD %d: %w", i, err)
		}
	}

	return pw.w.Flush()
}

// Bytes returns the serialized document.
func (p *P3D) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path, replacing any existing file only
// once the whole document has been written.
func (p *P3D) WriteFile(path string) error {
	return stream.WriteFileAtomic(path, p.Write)
}

// p3dWriter keeps the first error so record writers can emit fields
// unconditionally and check once.
type p3dWriter struct {
	w       *bufio.Writer
	err     error
	scratch [4]byte
}

func (pw *p3dWriter) bytes(b []byte) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.w.Write(b)
}

func (pw *p3dWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(pw.scratch[:], v)
	pw.bytes(pw.scratch[:])
}

func (pw *p3dWriter) f32(v float32) {
	pw.u32(math.Float32bits(v))
}

func (pw *p3dWriter) count(n int) {
	if pw.err == nil && uint64(n) > math.MaxUint32 {
		pw.err = fmt.Errorf("%w: %d", ErrTooManyElements, n)
		return
	}
	pw.u32(uint32(n))
}

func (pw *p3dWriter) cstring(s string) {
	if pw.err != nil {
		return
	}
	pw.err = binio.WriteCString(pw.w, s)
}

func (pw *p3dWriter) writeLOD(lod *LOD) error {
	pw.bytes([]byte(MagicP3DM))
	pw.u32(lod.VersionMajor)
	pw.u32(lod.VersionMinor)
	pw.count(len(lod.Points))
	pw.count(len(lod.FaceNormals))
	pw.count(len(lod.Faces))
	pw.bytes(lod.reserved[:])

	for _, pt := range lod.Points {
		pw.f32(pt.Coords[0])
		pw.f32(pt.Coords[1])
		pw.f32(pt.Coords[2])
		pw.u32(pt.Flags)
	}

	for _, n := range lod.FaceNormals {
		pw.f32(n[0])
		pw.f32(n[1])
		pw.f32(n[2])
	}
	if pw.err != nil {
		return pw.err
	}

	for i := range lod.Faces {
		if err := pw.writeFace(&lod.Faces[i]); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}

	pw.bytes([]byte(MagicTAGG))
	for name, payload := range lod.Taggs.All() {
		pw.writeTag(name, payload)
		if pw.err != nil {
			return fmt.Errorf("tag %q: %w", name, pw.err)
		}
	}
	pw.writeTag(TagEndOfFile, nil)

	pw.f32(lod.Resolution)
	return pw.err
}

func (pw *p3dWriter) writeVertex(v *Vertex) {
	pw.u32(v.PointIndex)
	pw.u32(v.NormalIndex)
	pw.f32(v.UV[0])
	pw.f32(v.UV[1])
}

func (pw *p3dWriter) writeFace(face *Face) error {
	n := len(face.Vertices)
	if n != 3 && n != 4 {
		return fmt.Errorf("%w: face has %d vertices", ErrInvalidVertexCount, n)
	}

	pw.u32(uint32(n))
	for i := range face.Vertices {
		pw.writeVertex(&face.Vertices[i])
	}
	if n == 3 {
		pw.writeVertex(&face.padding)
	}

	pw.u32(face.Flags)
	pw.cstring(face.Texture)
	pw.cstring(face.Material)
	return pw.err
}

func (pw *p3dWriter) writeTag(name string, payload []byte) {
	pw.bytes([]byte{tagMarker})
	pw.cstring(name)
	pw.count(len(payload))
	pw.bytes(payload)
}
