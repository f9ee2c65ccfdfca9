package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/signmaker/internal/config"
)

// InitConfigCmd writes a default configuration file.
type InitConfigCmd struct {
	Path  string `arg:"" optional:"" help:"Destination (default: config.yaml in the user config dir)" type:"path"`
	Force bool   `help:"Overwrite an existing file"`
}

func (c *InitConfigCmd) Run(rc *runContext) error {
	path := c.Path
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	cfg := config.Default()
	var err error
	if c.Path == "" {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(rc.out, "wrote %s\n", path)
	return nil
}
