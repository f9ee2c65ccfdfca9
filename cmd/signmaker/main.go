// signmaker generates town sign models for a map and inspects or edits
// MLOD (.p3d) model files.
package main

import (
	"io"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/Faultbox/signmaker/internal/config"
	"github.com/Faultbox/signmaker/internal/logger"
	"github.com/Faultbox/signmaker/pkg/stream"
)

// CLI is the signmaker command tree.
type CLI struct {
	Config    string `help:"Config file path (default: ./signmaker.yaml or the user config dir)" short:"c" type:"path"`
	Debug     bool   `help:"Enable debug logging"`
	LogFile   string `help:"Also write logs to this file" type:"path"`
	OutputDir string `help:"Parent directory of the generated <map>_signs folder" type:"path"`
	ModelsDir string `help:"Directory holding the sign template models" type:"path"`

	Build      BuildCmd      `cmd:"" help:"Generate signs for every town in a keypoint file"`
	Info       InfoCmd       `cmd:"" help:"Show a model's LODs, counts, bounds and textures"`
	Tags       TagsCmd       `cmd:"" help:"List the named tags of a LOD"`
	Dump       DumpCmd       `cmd:"" help:"Dump the decoded model structure"`
	Retexture  RetextureCmd  `cmd:"" help:"Change face texture or material paths"`
	InitConfig InitConfigCmd `cmd:"" name:"init-config" help:"Write the default configuration"`
}

// runContext is passed to every command's Run method.
type runContext struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func options() []kong.Option {
	return []kong.Option{
		kong.Name("signmaker"),
		kong.Description("Town sign generator and MLOD model tool"),
		kong.UsageOnError(),
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli, options()...)

	stdout := stream.StandardOutput()
	err := run(&cli, kctx, stdout)
	if cerr := stdout.Close(); err == nil {
		err = cerr
	}
	kctx.FatalIfErrorf(err)
}

// run loads configuration, sets up logging and dispatches the selected command.
func run(cli *CLI, kctx *kong.Context, out io.Writer) error {
	cfg, err := config.Load(cli.Config, config.Overrides{
		Debug:     cli.Debug,
		LogFile:   cli.LogFile,
		OutputDir: cli.OutputDir,
		ModelsDir: cli.ModelsDir,
	})
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	return kctx.Run(&runContext{
		cfg: cfg,
		log: logger.Named("signmaker"),
		out: out,
	})
}
