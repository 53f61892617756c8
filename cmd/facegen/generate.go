package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/config"
	"github.com/Faultbox/facegen/internal/engine/grid"
	"github.com/Faultbox/facegen/internal/face"
	"github.com/Faultbox/facegen/internal/logger"
	"github.com/Faultbox/facegen/internal/output"
	"github.com/Faultbox/facegen/internal/parts"
	"github.com/Faultbox/facegen/internal/selector"
	"github.com/Faultbox/facegen/pkg/aseprite"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Generate a batch of faces",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, EnvVars: []string{config.EnvOutput}, Usage: "output image path (default output_image.png)"},
			&cli.StringFlag{Name: "families", Aliases: []string{"c"}, Usage: "group family file (default facebuilder.json)"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of faces (default 5)"},
			&cli.IntFlag{Name: "grid", Aliases: []string{"g"}, Usage: "write one sheet with this many columns"},
			&cli.IntFlag{Name: "scale", Usage: "grid upscale factor (default 2)"},
			&cli.StringFlag{Name: "filter", Usage: "grid upscale filter: nearest, bilinear or catmullrom"},
			&cli.StringFlag{Name: "background", Usage: "grid and JPEG background as #rrggbb"},
			&cli.Uint64Flag{Name: "seed", EnvVars: []string{config.EnvSeed}, Usage: "random seed for a reproducible run"},
			&cli.BoolFlag{Name: "paletted", Usage: "reduce PNG output to 256 colors"},
			&cli.StringFlag{Name: "manifest", Usage: "write a YAML run manifest to this path"},
			&cli.StringFlag{Name: "on-error", Usage: "abort or skip failed rounds"},
			&cli.StringFlag{Name: "addressing", Usage: "layer-order or group-count"},
		},
		Action: func(c *cli.Context) error {
			input := c.Args().First()
			cfg := loadedConfig(c)
			if input == "" {
				input = cfg.Sprite.Path
			}
			if input == "" {
				cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
			}

			applyGenerateFlags(c, cfg)
			if err := runGenerate(input, cfg); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

// applyGenerateFlags overrides cfg with the flags given on the command line.
func applyGenerateFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}
	if c.IsSet("families") {
		cfg.Families.Path = c.String("families")
	}
	if c.IsSet("count") {
		cfg.Generation.Count = c.Int("count")
	}
	if c.IsSet("grid") {
		cfg.Generation.Grid = c.Int("grid")
	}
	if c.IsSet("scale") {
		cfg.Generation.Scale = c.Int("scale")
	}
	if c.IsSet("filter") {
		cfg.Generation.Filter = c.String("filter")
	}
	if c.IsSet("background") {
		cfg.Output.Background = c.String("background")
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		cfg.Generation.Seed = &seed
	}
	if c.IsSet("paletted") {
		cfg.Output.Paletted = c.Bool("paletted")
	}
	if c.IsSet("manifest") {
		cfg.Output.Manifest = c.String("manifest")
	}
	if c.IsSet("on-error") {
		cfg.Generation.OnError = c.String("on-error")
	}
	if c.IsSet("addressing") {
		cfg.Sprite.Addressing = c.String("addressing")
	}
}

func runGenerate(input string, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	addressing, err := parts.ParseAddressing(cfg.Sprite.Addressing)
	if err != nil {
		return err
	}
	policy, err := face.ParseFailurePolicy(cfg.Generation.OnError)
	if err != nil {
		return err
	}
	bg, err := grid.ParseBackground(cfg.Output.Background)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(cfg.Output.Path, output.Options{
		Grid:       cfg.Generation.Grid,
		Scale:      cfg.Generation.Scale,
		Filter:     cfg.Generation.Filter,
		Background: bg,
		Paletted:   cfg.Output.Paletted,
	}, logger.Log)
	if err != nil {
		return err
	}

	seed := uint64(time.Now().UnixNano())
	if cfg.Generation.Seed != nil {
		seed = *cfg.Generation.Seed
	}
	runID := uuid.New().String()
	log := logger.Log.With(zap.String("run", runID))

	f, err := aseprite.DecodeFile(input)
	if err != nil {
		return err
	}
	pal, err := f.Palette()
	if err != nil {
		return err
	}
	ix, err := parts.Build(f, parts.Options{
		Addressing: addressing,
		Weights:    cfg.Elements.Weights,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	log.Info("sprite loaded",
		zap.String("file", input),
		zap.Int("width", f.Width),
		zap.Int("height", f.Height),
		zap.Int("colors", pal.Len()),
		zap.Strings("groups", ix.Names()))

	fams, err := config.LoadFamilies(cfg.Families.Path)
	if err != nil {
		return err
	}
	if len(fams) == 0 {
		log.Warn("no group families configured, nothing to generate", zap.String("file", cfg.Families.Path))
		return nil
	}

	asm := face.NewAssembler(ix.Groups, pal, f.Width, f.Height, selector.NewSeeded(seed), log)
	if unknown := asm.UnknownGroups(fams); len(unknown) > 0 {
		log.Warn("families name groups missing from the sprite", zap.Strings("groups", unknown))
	}

	log.Info("generating", zap.Int("count", cfg.Generation.Count), zap.Uint64("seed", seed))
	res, err := asm.Batch(cfg.Generation.Count, fams, policy)
	if err != nil {
		var rerr *face.RoundError
		if errors.As(err, &rerr) {
			log.Error("batch aborted", zap.Int("round", rerr.Round), zap.Error(rerr.Err))
		}
		return err
	}

	files, err := w.Write(res.Faces)
	if err != nil {
		return err
	}

	if cfg.Output.Manifest != "" {
		m := output.NewManifest(runID, input, seed, addressing.String())
		m.AddBatch(res, files)
		if err := m.WriteFile(cfg.Output.Manifest); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		log.Info("manifest written", zap.String("file", cfg.Output.Manifest))
	}

	ok := color.New(color.FgGreen, color.Bold)
	ok.Printf("Generated %d faces", len(res.Faces))
	fmt.Printf(" (seed %d)\n", seed)
	for _, name := range files {
		fmt.Printf("  %s\n", name)
	}
	if len(res.Failed) > 0 {
		color.New(color.FgYellow).Printf("Skipped %d failed rounds\n", len(res.Failed))
	}
	return nil
}
