package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/signmaker/pkg/formats"
)

// InfoCmd prints a summary of a model file.
type InfoCmd struct {
	File string `arg:"" help:"Model file (.p3d)" type:"existingfile"`
}

func (c *InfoCmd) Run(rc *runContext) error {
	p3d, err := formats.ParseP3DFile(c.File)
	if err != nil {
		return err
	}
	rc.log.Debug("parsed model", zap.String("file", c.File), zap.Int("lods", len(p3d.LODs)))

	w := rc.out
	fmt.Fprintf(w, "File:    %s\n", c.File)
	fmt.Fprintf(w, "Version: %d\n", p3d.Version)
	fmt.Fprintf(w, "LODs:    %d\n", len(p3d.LODs))
	fmt.Fprintf(w, "Faces:   %d\n", p3d.GetTotalFaceCount())

	for i, s := range p3d.Stats() {
		lod := &p3d.LODs[i]
		fmt.Fprintf(w, "\nLOD %d (resolution %g, version %d.%d)\n", i, s.Resolution, lod.VersionMajor, lod.VersionMinor)
		fmt.Fprintf(w, "  points:  %d\n", s.Points)
		fmt.Fprintf(w, "  normals: %d\n", s.Normals)
		fmt.Fprintf(w, "  faces:   %d (%d triangles, %d quads)\n", s.Faces, s.Triangles, s.Quads)
		fmt.Fprintf(w, "  tags:    %d\n", s.Tags)
		if s.Points > 0 {
			fmt.Fprintf(w, "  bounds:  %v .. %v\n", s.Min, s.Max)
		}
	}

	textures := p3d.Textures()
	fmt.Fprintf(w, "\nTextures (%d):\n", len(textures))
	for _, t := range textures {
		fmt.Fprintf(w, "  %s\n", t)
	}
	return nil
}
