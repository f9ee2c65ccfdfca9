package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/signmaker/pkg/formats"
)

// RetextureCmd rewrites texture and material paths of a model.
//
// With --replace every face using that texture is changed; otherwise only the
// face selected by --lod and --face.
type RetextureCmd struct {
	Input    string `arg:"" help:"Source model (.p3d)" type:"existingfile"`
	Output   string `arg:"" help:"Destination model, - for standard output"`
	Texture  string `help:"New texture path" required:""`
	Material string `help:"New material path (single-face mode only)"`
	Replace  string `help:"Replace this texture path on every face instead of one face"`
	LOD      int    `help:"LOD index" default:"0" name:"lod"`
	Face     int    `help:"Face index" default:"0"`
}

func (c *RetextureCmd) Run(rc *runContext) error {
	p3d, err := formats.ParseP3DFile(c.Input)
	if err != nil {
		return err
	}

	if c.Replace != "" {
		if c.Material != "" {
			return errors.New("--material cannot be combined with --replace")
		}
		n := p3d.ReplaceTexture(c.Replace, c.Texture)
		if n == 0 {
			return fmt.Errorf("no face uses texture %q", c.Replace)
		}
		rc.log.Info("replaced texture", zap.String("from", c.Replace), zap.String("to", c.Texture), zap.Int("faces", n))
	} else {
		face := p3d.Face(c.LOD, c.Face)
		if face == nil {
			return fmt.Errorf("LOD %d face %d not found", c.LOD, c.Face)
		}
		face.Texture = c.Texture
		if c.Material != "" {
			face.Material = c.Material
		}
		rc.log.Info("retextured face", zap.Int("lod", c.LOD), zap.Int("face", c.Face), zap.String("texture", c.Texture))
	}

	if c.Output == "-" {
		return p3d.Write(rc.out)
	}
	return p3d.WriteFile(c.Output)
}
