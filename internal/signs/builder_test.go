package signs

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Faultbox/signmaker/internal/config"
	"github.com/Faultbox/signmaker/pkg/formats"
)

// signTemplate returns a single-quad sign board with a second, untextured face.
func signTemplate(texture string) *formats.P3D {
	lod := formats.LOD{
		VersionMajor: 28,
		VersionMinor: 256,
		Resolution:   1,
		Points: []formats.Point{
			{Coords: [3]float32{-1, 0, 0}},
			{Coords: [3]float32{1, 0, 0}},
			{Coords: [3]float32{1, 0.5, 0}},
			{Coords: [3]float32{-1, 0.5, 0}},
		},
		FaceNormals: [][3]float32{{0, 0, -1}},
		Faces: []formats.Face{
			{
				Vertices: []formats.Vertex{
					{PointIndex: 0, UV: [2]float32{0, 1}},
					{PointIndex: 1, UV: [2]float32{1, 1}},
					{PointIndex: 2, UV: [2]float32{1, 0}},
					{PointIndex: 3, UV: [2]float32{0, 0}},
				},
				Texture:  texture,
				Material: `signs\data\sign.rvmat`,
			},
			{
				Vertices: []formats.Vertex{{PointIndex: 0}, {PointIndex: 1}, {PointIndex: 2}},
				Texture:  `signs\data\post_co.paa`,
			},
		},
	}
	lod.Taggs.Set("#SharpEdges#", []byte{0, 0, 0, 0})
	return &formats.P3D{Version: 257, LODs: []formats.LOD{lod}}
}

type buildFixture struct {
	cfg       *config.Config
	keypoints string
}

func newBuildFixture(t *testing.T, keypoints string) *buildFixture {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Data.ModelsDir = filepath.Join(root, "models")
	cfg.Data.FontFile = filepath.Join(root, "font.ttf")
	cfg.Data.DefinesFile = filepath.Join(root, "defines.hpp")
	cfg.Output.Dir = filepath.Join(root, "out")
	cfg.Label.Width = 256
	cfg.Label.Height = 32
	cfg.Label.FontSize = 24

	require.NoError(t, os.MkdirAll(cfg.Data.ModelsDir, 0755))
	require.NoError(t, os.MkdirAll(cfg.Output.Dir, 0755))
	require.NoError(t, signTemplate("start_ca.paa").WriteFile(filepath.Join(cfg.Data.ModelsDir, "altis_startsign.p3d")))
	require.NoError(t, signTemplate("end_ca.paa").WriteFile(filepath.Join(cfg.Data.ModelsDir, "altis_endsign.p3d")))
	require.NoError(t, os.WriteFile(cfg.Data.FontFile, goregular.TTF, 0644))
	require.NoError(t, os.WriteFile(cfg.Data.DefinesFile, []byte("#define SIGN(a,b)\n"), 0644))

	path := filepath.Join(root, "stratis.hpp")
	require.NoError(t, os.WriteFile(path, []byte(keypoints), 0644))

	return &buildFixture{cfg: cfg, keypoints: path}
}

const buildKeypoints = `class Names
{
	class Kamino
	{
		name="Kamino Bay";
		type="NameVillage";
	};
	class Girna
	{
		name="Girna";
		type="NameCity";
	};
	class Tokyo
	{
		name="東京";
		type="NameCity";
	};
};
`

func TestBuild(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)

	res, err := NewBuilder(fx.cfg, nil).Build(context.Background(), fx.keypoints, 1)
	require.NoError(t, err)

	folder := filepath.Join(fx.cfg.Output.Dir, "stratis_signs")
	require.Equal(t, folder, res.Folder)
	require.Equal(t, []string{"Kamino Bay", "Girna", "東京"}, res.Towns)
	require.Len(t, res.Labels, 3)
	require.Len(t, res.Models, 6)

	// Non-Latin names are transliterated rather than dropped.
	tokyo := FileName("東京")
	require.NotEmpty(t, tokyo)
	require.FileExists(t, filepath.Join(folder, "data", tokyo+"_ca.png"))
	require.FileExists(t, filepath.Join(folder, "rnc_"+tokyo+"_start.p3d"))
	require.FileExists(t, filepath.Join(folder, "rnc_"+tokyo+"_end.p3d"))

	// Labels are PNGs of the configured size.
	f, err := os.Open(filepath.Join(folder, "data", "Kamino_Bay_ca.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 256, cfg.Width)
	require.Equal(t, 32, cfg.Height)

	// Only the first face of each model is retextured.
	for _, kind := range []string{"start", "end"} {
		p3d, err := formats.ParseP3DFile(filepath.Join(folder, "rnc_Girna_"+kind+".p3d"))
		require.NoError(t, err)
		require.Equal(t, `stratis_signs\data\Girna_ca.paa`, p3d.LODs[0].Faces[0].Texture)
		require.Equal(t, `signs\data\sign.rvmat`, p3d.LODs[0].Faces[0].Material)
		require.Equal(t, `signs\data\post_co.paa`, p3d.LODs[0].Faces[1].Texture)
		require.True(t, p3d.LODs[0].Taggs.Has("#SharpEdges#"))
	}

	defines, err := os.ReadFile(filepath.Join(folder, "defines.hpp"))
	require.NoError(t, err)
	require.Equal(t, "#define SIGN(a,b)\n", string(defines))

	cpp, err := os.ReadFile(filepath.Join(folder, "config.cpp"))
	require.NoError(t, err)
	require.Equal(t,
		"#include \"defines.hpp\"\n"+
			"PREAMBLE(stratis);\n"+
			"SIGN(Kamino_Bay, stratis);\n"+
			"SIGN(Girna, stratis);\n"+
			"SIGN("+tokyo+", stratis);\n"+
			"};",
		string(cpp))
}

func TestBuild_RecreatesOutputFolder(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)

	stale := filepath.Join(fx.cfg.Output.Dir, "stratis_signs", "data", "Old_ca.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	_, err := NewBuilder(fx.cfg, nil).Build(context.Background(), fx.keypoints, 1)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "stale output should be removed")
}

func TestBuild_InvalidSignType(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)
	b := NewBuilder(fx.cfg, nil)

	for _, signType := range []int{0, 5, -1} {
		_, err := b.Build(context.Background(), fx.keypoints, signType)
		require.Error(t, err, "sign type %d", signType)
	}
}

func TestBuild_MissingTemplate(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)
	require.NoError(t, os.Remove(filepath.Join(fx.cfg.Data.ModelsDir, "altis_endsign.p3d")))

	_, err := NewBuilder(fx.cfg, nil).Build(context.Background(), fx.keypoints, 1)
	require.Error(t, err)
}

func TestBuild_TemplateWithoutFaces(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)
	empty := &formats.P3D{Version: 257, LODs: []formats.LOD{{VersionMajor: 28, VersionMinor: 256}}}
	require.NoError(t, empty.WriteFile(filepath.Join(fx.cfg.Data.ModelsDir, "altis_startsign.p3d")))

	_, err := NewBuilder(fx.cfg, nil).Build(context.Background(), fx.keypoints, 1)
	require.ErrorContains(t, err, "no face")
}

func TestBuild_Cancelled(t *testing.T) {
	fx := newBuildFixture(t, buildKeypoints)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(fx.cfg, nil).Build(ctx, fx.keypoints, 1)
	require.ErrorIs(t, err, context.Canceled)
}
