package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/signmaker/pkg/formats"
)

// execute parses args and runs the command, returning what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// An empty config file keeps the user's own config out of the test.
	cfgPath := filepath.Join(t.TempDir(), "signmaker.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0644))

	var cli CLI
	parser, err := kong.New(&cli, options()...)
	require.NoError(t, err)
	kctx, err := parser.Parse(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, err)

	var out bytes.Buffer
	err = run(&cli, kctx, &out)
	return out.String(), err
}

func writeModel(t *testing.T) string {
	t.Helper()

	lod := formats.LOD{
		VersionMajor: 28,
		VersionMinor: 256,
		Resolution:   1,
		Points: []formats.Point{
			{Coords: [3]float32{-2, 0, 0}},
			{Coords: [3]float32{2, 0, 0}},
			{Coords: [3]float32{2, 1, 0.5}},
			{Coords: [3]float32{-2, 1, 0}},
		},
		FaceNormals: [][3]float32{{0, 0, -1}},
		Faces: []formats.Face{
			{
				Vertices: []formats.Vertex{{PointIndex: 0}, {PointIndex: 1}, {PointIndex: 2}, {PointIndex: 3}},
				Texture:  `signs\data\blank_ca.paa`,
				Material: `signs\data\sign.rvmat`,
			},
			{
				Vertices: []formats.Vertex{{PointIndex: 0}, {PointIndex: 1}, {PointIndex: 2}},
				Texture:  `signs\data\post_co.paa`,
			},
			{
				Vertices: []formats.Vertex{{PointIndex: 1}, {PointIndex: 2}, {PointIndex: 3}},
				Texture:  `signs\data\blank_ca.paa`,
			},
		},
	}
	require.NoError(t, lod.Taggs.Set("#SharpEdges#", []byte{1, 2, 3, 4}))
	require.NoError(t, lod.Taggs.Set("signboard", nil))

	path := filepath.Join(t.TempDir(), "sign.p3d")
	p3d := &formats.P3D{Version: 257, LODs: []formats.LOD{lod}}
	require.NoError(t, p3d.WriteFile(path))
	return path
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "info", writeModel(t))
	require.NoError(t, err)

	require.Contains(t, out, "Version: 257")
	require.Contains(t, out, "LODs:    1")
	require.Contains(t, out, "faces:   3 (2 triangles, 1 quads)")
	require.Contains(t, out, "tags:    2")
	require.Contains(t, out, "bounds:  [-2 0 0] .. [2 1 0.5]")
	require.Contains(t, out, "Textures (2):")
}

func TestTags(t *testing.T) {
	out, err := execute(t, "tags", writeModel(t), "--hex")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.True(t, strings.HasPrefix(lines[0], "#SharpEdges#"))
	require.Contains(t, lines[0], "4 bytes")
	require.Contains(t, out, "01 02 03 04")
	require.Contains(t, out, "signboard")
	require.NotContains(t, out, formats.TagEndOfFile)

	_, err = execute(t, "tags", writeModel(t), "--lod", "3")
	require.Error(t, err)
}

func TestDump(t *testing.T) {
	out, err := execute(t, "dump", writeModel(t))
	require.NoError(t, err)
	require.Contains(t, out, "formats.P3D")
	require.Contains(t, out, "post_co.paa")
}

func TestRetexture_SingleFace(t *testing.T) {
	in := writeModel(t)
	dst := filepath.Join(t.TempDir(), "out.p3d")

	_, err := execute(t, "retexture", in, dst,
		"--texture", `altis_signs\data\Kavala_ca.paa`,
		"--material", `signs\data\lit.rvmat`,
		"--face", "2")
	require.NoError(t, err)

	p3d, err := formats.ParseP3DFile(dst)
	require.NoError(t, err)
	faces := p3d.LODs[0].Faces
	require.Equal(t, `signs\data\blank_ca.paa`, faces[0].Texture)
	require.Equal(t, `altis_signs\data\Kavala_ca.paa`, faces[2].Texture)
	require.Equal(t, `signs\data\lit.rvmat`, faces[2].Material)
}

func TestRetexture_Replace(t *testing.T) {
	in := writeModel(t)
	dst := filepath.Join(t.TempDir(), "out.p3d")

	_, err := execute(t, "retexture", in, dst,
		"--texture", `new_ca.paa`,
		"--replace", `signs\data\blank_ca.paa`)
	require.NoError(t, err)

	p3d, err := formats.ParseP3DFile(dst)
	require.NoError(t, err)
	require.Equal(t, []string{"new_ca.paa", `signs\data\post_co.paa`}, p3d.Textures())

	_, err = execute(t, "retexture", in, dst, "--texture", "x", "--replace", "missing.paa")
	require.Error(t, err)
}

func TestRetexture_Stdout(t *testing.T) {
	out, err := execute(t, "retexture", writeModel(t), "-", "--texture", "stdout_ca.paa")
	require.NoError(t, err)

	p3d, err := formats.ParseP3D([]byte(out))
	require.NoError(t, err)
	require.Equal(t, "stdout_ca.paa", p3d.LODs[0].Faces[0].Texture)
}

func TestRetexture_FaceOutOfRange(t *testing.T) {
	_, err := execute(t, "retexture", writeModel(t), "-", "--texture", "x", "--face", "9")
	require.ErrorContains(t, err, "not found")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	out, err := execute(t, "init-config", path)
	require.NoError(t, err)
	require.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "din1451alt.ttf")

	_, err = execute(t, "init-config", path)
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init-config", path, "--force")
	require.NoError(t, err)
}

func TestInitConfig_DefaultLocation(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("config dir follows XDG_CONFIG_HOME on Linux only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := execute(t, "init-config")
	require.NoError(t, err)

	want := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "signmaker", "config.yaml")
	require.Contains(t, out, want)
	require.FileExists(t, want)
}
