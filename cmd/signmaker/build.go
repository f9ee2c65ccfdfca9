package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Faultbox/signmaker/internal/signs"
)

// BuildCmd runs the sign pipeline for one map.
type BuildCmd struct {
	Keypoints string `arg:"" help:"Keypoint file of the map (<map>.hpp)" type:"existingfile"`
	SignType  int    `arg:"" help:"Sign style, 1-based index into the configured styles"`
}

func (c *BuildCmd) Run(rc *runContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := signs.NewBuilder(rc.cfg, rc.log.Named("build")).Build(ctx, c.Keypoints, c.SignType)
	if err != nil {
		return err
	}

	fmt.Fprintf(rc.out, "%s: %d towns, %d models, %d labels\n",
		res.Folder, len(res.Towns), len(res.Models), len(res.Labels))
	return nil
}
