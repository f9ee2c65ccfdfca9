package signs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/signmaker/internal/config"
	"github.com/Faultbox/signmaker/pkg/encoding"
	"github.com/Faultbox/signmaker/pkg/formats"
	"github.com/Faultbox/signmaker/pkg/stream"
)

// Builder produces a sign addon folder for one map.
type Builder struct {
	cfg *config.Config
	log *zap.Logger
}

// Result lists what a build produced.
type Result struct {
	Folder string   // <output>/<map>_signs
	Towns  []string // Towns that got a sign, in keypoint order
	Models []string // Written .p3d paths
	Labels []string // Written .png paths
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(cfg *config.Config, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg, log: log}
}

// templates holds the start and end sign models of a style.
type templates struct {
	start, end *formats.P3D
}

func (b *Builder) loadTemplates(style config.StyleConfig) (*templates, error) {
	t := &templates{}
	for _, item := range []struct {
		suffix string
		dst    **formats.P3D
	}{
		{"_startsign.p3d", &t.start},
		{"_endsign.p3d", &t.end},
	} {
		path := filepath.Join(b.cfg.Data.ModelsDir, style.Name+item.suffix)
		p3d, err := formats.ParseP3DFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "loading sign template")
		}
		if p3d.Face(0, 0) == nil {
			return nil, errors.Errorf("sign template %s has no face in its first LOD", path)
		}
		b.log.Debug("loaded template",
			zap.String("file", path),
			zap.Int("lods", len(p3d.LODs)),
			zap.Strings("textures", p3d.Textures()))
		*item.dst = p3d
	}
	return t, nil
}

// Build reads town names from keypointsPath and writes, for each town, a label
// image and a start/end sign model whose first face shows that label.
func (b *Builder) Build(ctx context.Context, keypointsPath string, signType int) (*Result, error) {
	style, err := b.cfg.Style(signType)
	if err != nil {
		return nil, err
	}
	textColor, err := style.Color()
	if err != nil {
		return nil, err
	}

	mapName := MapName(keypointsPath)
	towns, err := LoadTownNames(keypointsPath)
	if err != nil {
		return nil, err
	}
	b.log.Info("collected towns", zap.String("map", mapName), zap.Int("count", len(towns)))

	labelFont, err := LoadFont(b.cfg.Data.FontFile)
	if err != nil {
		return nil, err
	}
	tmpl, err := b.loadTemplates(style)
	if err != nil {
		return nil, err
	}

	folderName := mapName + "_signs"
	res := &Result{
		Folder: filepath.Join(b.cfg.Output.Dir, folderName),
	}
	if err := createOutputFolder(res.Folder); err != nil {
		return nil, err
	}

	labelOpts := LabelOptions{
		Width:    b.cfg.Label.Width,
		Height:   b.cfg.Label.Height,
		Font:     labelFont,
		FontSize: b.cfg.Label.FontSize,
		Color:    textColor,
	}

	for _, town := range towns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := FileName(town)
		if name == "" {
			b.log.Warn("skipping town without a usable name", zap.String("town", town))
			continue
		}

		labelPath := filepath.Join(res.Folder, "data", name+"_ca.png")
		err := stream.WriteFileAtomic(labelPath, func(w io.Writer) error {
			return RenderLabel(w, town, labelOpts)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "rendering label for %q", town)
		}
		res.Labels = append(res.Labels, labelPath)

		// The game converts the PNG to .paa; models reference the converted file.
		texture := encoding.NormalizeGamePath(path.Join(folderName, "data", name+"_ca.paa"))
		for _, sign := range []struct {
			p3d  *formats.P3D
			kind string
		}{
			{tmpl.start, "start"},
			{tmpl.end, "end"},
		} {
			sign.p3d.Face(0, 0).Texture = texture

			modelPath := filepath.Join(res.Folder, fmt.Sprintf("%s_%s_%s.p3d", b.cfg.Output.Prefix, name, sign.kind))
			if err := sign.p3d.WriteFile(modelPath); err != nil {
				return nil, errors.Wrapf(err, "writing %s sign for %q", sign.kind, town)
			}
			res.Models = append(res.Models, modelPath)
		}

		res.Towns = append(res.Towns, town)
		b.log.Info("created sign", zap.String("town", town), zap.String("texture", texture))
	}

	if err := copyFile(b.cfg.Data.DefinesFile, filepath.Join(res.Folder, "defines.hpp")); err != nil {
		return nil, err
	}

	cppPath := filepath.Join(res.Folder, "config.cpp")
	err = stream.WriteFileAtomic(cppPath, func(w io.Writer) error {
		return WriteConfigCpp(w, mapName, res.Towns)
	})
	if err != nil {
		return nil, errors.Wrap(err, "writing config.cpp")
	}

	b.log.Info("build finished",
		zap.String("folder", res.Folder),
		zap.Int("models", len(res.Models)),
		zap.Int("labels", len(res.Labels)))
	return res, nil
}

// createOutputFolder recreates folder and its data subdirectory.
func createOutputFolder(folder string) error {
	if err := os.RemoveAll(folder); err != nil {
		return errors.Wrapf(err, "removing previous output %s", folder)
	}
	if err := os.MkdirAll(filepath.Join(folder, "data"), 0755); err != nil {
		return errors.Wrap(err, "creating output folder")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening template")
	}
	defer in.Close()

	return stream.WriteFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return errors.Wrapf(err, "copying %s", src)
	})
}
