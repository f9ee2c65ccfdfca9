package main

import (
	"encoding/hex"
	"fmt"

	"github.com/Faultbox/signmaker/pkg/formats"
)

// TagsCmd lists the tag table of one LOD in file order.
type TagsCmd struct {
	File string `arg:"" help:"Model file (.p3d)" type:"existingfile"`
	LOD  int    `help:"LOD index" default:"0" name:"lod"`
	Hex  bool   `help:"Hex dump tag payloads"`
}

func (c *TagsCmd) Run(rc *runContext) error {
	p3d, err := formats.ParseP3DFile(c.File)
	if err != nil {
		return err
	}
	if c.LOD < 0 || c.LOD >= len(p3d.LODs) {
		return fmt.Errorf("LOD %d out of range, model has %d", c.LOD, len(p3d.LODs))
	}

	for name, payload := range p3d.LODs[c.LOD].Taggs.All() {
		fmt.Fprintf(rc.out, "%-24s %d bytes\n", name, len(payload))
		if c.Hex && len(payload) > 0 {
			fmt.Fprint(rc.out, hex.Dump(payload))
		}
	}
	return nil
}
