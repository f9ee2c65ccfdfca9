// Package formats provides readers and writers for game content file formats.
// P3D (MLOD) format codec for editable 3D models.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Faultbox/signmaker/pkg/binio"
	"github.com/Faultbox/signmaker/pkg/stream"
)

// P3D format errors.
var (
	ErrInvalidMagic       = errors.New("invalid P3D magic")
	ErrInvalidVertexCount = errors.New("invalid face vertex count")
	ErrInvalidString      = errors.New("invalid P3D string")
	ErrTruncatedP3DData   = errors.New("truncated P3D data")
	ErrTooManyElements    = errors.New("element count exceeds 32 bits")
)

// Section magics.
const (
	MagicMLOD = "MLOD"
	MagicP3DM = "P3DM"
	MagicTAGG = "TAGG"
)

// tagMarker precedes every tag table entry.
const tagMarker = 0x01

// maxPrealloc caps slice preallocation driven by header counts.
const maxPrealloc = 4096

// FormatError describes malformed input and where it was found.
type FormatError struct {
	Offset  int64  // Byte offset of the field that failed
	Section string // Record being decoded ("header", "LOD", "face", "tagg")
	Reason  string // Human-readable explanation
	Err     error  // One of the P3D format errors
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("p3d: %s at offset %d: %s", e.Section, e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err was caused by malformed input rather than
// an I/O failure.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// Point is a vertex position with its selection/lighting flags.
type Point struct {
	Coords [3]float32
	Flags  uint32
}

// Vertex is one corner of a face.
type Vertex struct {
	PointIndex  uint32     // Index into LOD.Points
	NormalIndex uint32     // Index into LOD.FaceNormals
	UV          [2]float32 // Texture coordinates
}

// Face is a triangle or quad.
type Face struct {
	Vertices []Vertex // 3 or 4 vertices
	Flags    uint32
	Texture  string // Texture path, e.g. "data\sign_ca.paa"
	Material string // Material path (.rvmat)

	// Unused fourth vertex slot of a triangle, kept so it can be written back.
	padding Vertex
}

// LOD is one resolution of the model.
type LOD struct {
	VersionMajor uint32
	VersionMinor uint32
	Resolution   float32
	Points       []Point
	FaceNormals  [][3]float32
	Faces        []Face
	Taggs        TagTable

	// Header field following the counts; not interpreted.
	reserved [4]byte
}

// P3D represents a parsed MLOD model file.
type P3D struct {
	Version uint32
	LODs    []LOD
}

// ParseP3D parses P3D data from a byte slice.
func ParseP3D(data []byte) (*P3D, error) {
	return ReadP3D(stream.NewBufferInput(data))
}

// ParseP3DFile parses a P3D file from disk.
func ParseP3DFile(path string) (*P3D, error) {
	in, err := stream.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	p3d, err := ReadP3D(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p3d, nil
}

// ReadP3D reads a complete document from r. Nothing is returned unless every
// LOD decodes successfully.
//
// A reader that implements io.ByteReader is consumed only up to the failing
// field. Any other reader is buffered, so on error it may have been read up
// to 4 KiB past that point.
func ReadP3D(r io.Reader) (*P3D, error) {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	d := &p3dReader{r: br}

	if err := d.expectMagic(MagicMLOD, "header"); err != nil {
		return nil, err
	}

	version, err := d.u32("header")
	if err != nil {
		return nil, err
	}
	lodCount, err := d.u32("header")
	if err != nil {
		return nil, err
	}

	p3d := &P3D{
		Version: version,
		LODs:    makeCap[LOD](lodCount),
	}
	for i := uint32(0); i < lodCount; i++ {
		lod, err := d.readLOD()
		if err != nil {
			return nil, fmt.Errorf("LOD %d: %w", i, err)
		}
		p3d.LODs = append(p3d.LODs, *lod)
	}

	return p3d, nil
}

// makeCap returns a nil slice for n == 0 and a slice with capacity
// min(n, maxPrealloc) otherwise.
func makeCap[T any](n uint32) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, min(n, maxPrealloc))
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// p3dReader tracks the stream offset so errors can point at the failing field.
type p3dReader struct {
	r       byteReader
	off     int64
	scratch [16]byte
}

func (d *p3dReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.off += int64(n)
	return n, err
}

func (d *p3dReader) ReadByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == nil {
		d.off++
	}
	return b, err
}

// full fills buf, turning a short stream into a truncation error.
func (d *p3dReader) full(buf []byte, section string) error {
	start := d.off
	if _, err := io.ReadFull(d, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return &FormatError{
				Offset:  start,
				Section: section,
				Reason:  fmt.Sprintf("need %d bytes, stream ended", len(buf)),
				Err:     ErrTruncatedP3DData,
			}
		}
		return fmt.Errorf("reading %s at offset %d: %w", section, start, err)
	}
	return nil
}

func (d *p3dReader) expectMagic(want, section string) error {
	start := d.off
	buf := d.scratch[:4]
	if err := d.full(buf, section); err != nil {
		return err
	}
	if string(buf) != want {
		return &FormatError{
			Offset:  start,
			Section: section,
			Reason:  fmt.Sprintf("expected %q, got %q", want, buf),
			Err:     ErrInvalidMagic,
		}
	}
	return nil
}

func (d *p3dReader) u32(section string) (uint32, error) {
	buf := d.scratch[:4]
	if err := d.full(buf, section); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (d *p3dReader) f32(section string) (float32, error) {
	v, err := d.u32(section)
	return math.Float32frombits(v), err
}

func (d *p3dReader) cstring(section string) (string, error) {
	start := d.off
	s, err := binio.ReadCString(d)
	if err != nil {
		if errors.Is(err, binio.ErrInvalidUTF8) {
			return "", &FormatError{
				Offset:  start,
				Section: section,
				Reason:  err.Error(),
				Err:     ErrInvalidString,
			}
		}
		return "", fmt.Errorf("reading %s string at offset %d: %w", section, start, err)
	}
	return s, nil
}

func (d *p3dReader) readLOD() (*LOD, error) {
	if err := d.expectMagic(MagicP3DM, "LOD"); err != nil {
		return nil, err
	}

	var header [5]uint32
	for i := range header {
		v, err := d.u32("LOD")
		if err != nil {
			return nil, err
		}
		header[i] = v
	}
	pointCount, normalCount, faceCount := header[2], header[3], header[4]

	lod := &LOD{
		VersionMajor: header[0],
		VersionMinor: header[1],
		Points:       makeCap[Point](pointCount),
		FaceNormals:  makeCap[[3]float32](normalCount),
		Faces:        makeCap[Face](faceCount),
	}
	if err := d.full(lod.reserved[:], "LOD"); err != nil {
		return nil, err
	}

	// Points
	for i := uint32(0); i < pointCount; i++ {
		buf := d.scratch[:16]
		if err := d.full(buf, "point"); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		lod.Points = append(lod.Points, Point{
			Coords: [3]float32{
				math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
				math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
				math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
			},
			Flags: binary.LittleEndian.Uint32(buf[12:]),
		})
	}

	// Face normals
	for i := uint32(0); i < normalCount; i++ {
		buf := d.scratch[:12]
		if err := d.full(buf, "normal"); err != nil {
			return nil, fmt.Errorf("normal %d: %w", i, err)
		}
		lod.FaceNormals = append(lod.FaceNormals, [3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
		})
	}

	// Faces
	for i := uint32(0); i < faceCount; i++ {
		face, err := d.readFace()
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		lod.Faces = append(lod.Faces, face)
	}

	if err := d.readTaggs(&lod.Taggs); err != nil {
		return nil, err
	}

	resolution, err := d.f32("LOD")
	if err != nil {
		return nil, err
	}
	lod.Resolution = resolution

	return lod, nil
}

func (d *p3dReader) readVertex() (Vertex, error) {
	buf := d.scratch[:16]
	if err := d.full(buf, "vertex"); err != nil {
		return Vertex{}, err
	}
	return Vertex{
		PointIndex:  binary.LittleEndian.Uint32(buf[0:]),
		NormalIndex: binary.LittleEndian.Uint32(buf[4:]),
		UV: [2]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])),
		},
	}, nil
}

func (d *p3dReader) readFace() (Face, error) {
	start := d.off
	vertexCount, err := d.u32("face")
	if err != nil {
		return Face{}, err
	}
	if vertexCount != 3 && vertexCount != 4 {
		return Face{}, &FormatError{
			Offset:  start,
			Section: "face",
			Reason:  fmt.Sprintf("vertex count %d, expected 3 or 4", vertexCount),
			Err:     ErrInvalidVertexCount,
		}
	}

	var face Face
	face.Vertices = make([]Vertex, vertexCount)
	for i := range face.Vertices {
		if face.Vertices[i], err = d.readVertex(); err != nil {
			return Face{}, err
		}
	}

	// Triangles still occupy four vertex slots on disk.
	if vertexCount == 3 {
		if face.padding, err = d.readVertex(); err != nil {
			return Face{}, err
		}
	}

	if face.Flags, err = d.u32("face"); err != nil {
		return Face{}, err
	}
	if face.Texture, err = d.cstring("face"); err != nil {
		return Face{}, err
	}
	if face.Material, err = d.cstring("face"); err != nil {
		return Face{}, err
	}

	return face, nil
}

func (d *p3dReader) readTaggs(taggs *TagTable) error {
	if err := d.expectMagic(MagicTAGG, "tagg"); err != nil {
		return err
	}

	for {
		// Entry marker, always 0x01 in practice.
		if err := d.full(d.scratch[:1], "tagg"); err != nil {
			return err
		}

		name, err := d.cstring("tagg")
		if err != nil {
			return err
		}
		size, err := d.u32("tagg")
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}

		payload, err := d.payload(size, "tagg")
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
		if name == TagEndOfFile {
			return nil
		}
		if err := taggs.Set(name, payload); err != nil {
			return err
		}
	}
}

// payload reads a length-prefixed blob without trusting size for allocation.
func (d *p3dReader) payload(size uint32, section string) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	start := d.off
	var buf bytes.Buffer
	buf.Grow(int(min(size, maxPrealloc)))
	if _, err := io.CopyN(&buf, d, int64(size)); err != nil {
		if err == io.EOF {
			return nil, &FormatError{
				Offset:  start,
				Section: section,
				Reason:  fmt.Sprintf("need %d bytes, stream ended", size),
				Err:     ErrTruncatedP3DData,
			}
		}
		return nil, fmt.Errorf("reading %s at offset %d: %w", section, start, err)
	}
	return buf.Bytes(), nil
}
