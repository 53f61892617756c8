// facegen assembles random faces from the layer groups of an indexed
// Aseprite sprite.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/config"
	"github.com/Faultbox/facegen/internal/logger"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "facegen"
	app.Usage = "assemble random faces from Aseprite layer groups"
	app.Version = version

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to config file (default ./facegen.yaml or user config dir)",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{config.EnvLogLevel},
			Usage:   "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to a rotated file",
		},
	}

	app.Before = func(c *cli.Context) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return cli.Exit(err, 1)
		}
		if c.IsSet("log-level") {
			cfg.Logging.Level = c.String("log-level")
		}
		if c.IsSet("log-file") {
			cfg.Logging.LogFile = c.String("log-file")
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return cli.Exit(err, 1)
		}
		c.App.Metadata = map[string]interface{}{"config": cfg}
		return nil
	}

	app.After = func(c *cli.Context) error {
		logger.Sync()
		return nil
	}

	app.Commands = []*cli.Command{
		generateCommand(),
		inspectCommand(),
		initConfigCommand(),
	}

	return app
}

func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata["config"].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func initConfigCommand() *cli.Command {
	return &cli.Command{
		Name:      "init-config",
		Usage:     "Write the effective configuration as YAML",
		ArgsUsage: "[FILE]",
		Action: func(c *cli.Context) error {
			cfg := loadedConfig(c)
			path := c.Args().First()

			var err error
			if path == "" {
				err = cfg.Save()
			} else {
				err = cfg.SaveTo(path)
			}
			if err != nil {
				return cli.Exit(err, 1)
			}
			if path == "" {
				path = filepath.Join(config.ConfigDir(), config.FileName)
			}
			logger.Info("config written", zap.String("file", path))
			return nil
		},
	}
}
