package main

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/signmaker/pkg/formats"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// DumpCmd prints every decoded field of a model.
type DumpCmd struct {
	File     string `arg:"" help:"Model file (.p3d)" type:"existingfile"`
	MaxDepth int    `help:"Maximum nesting depth, 0 for no limit" default:"0"`
}

func (c *DumpCmd) Run(rc *runContext) error {
	p3d, err := formats.ParseP3DFile(c.File)
	if err != nil {
		return err
	}

	cfg := spewConfig
	cfg.MaxDepth = c.MaxDepth
	cfg.Fdump(rc.out, p3d)
	return nil
}
