package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logedit-go/config"
	"github.com/masmgr/logedit-go/internal/apperr"
)

// ConfigCmd returns the config command, which prints the effective
// configuration or writes it to a file.
func ConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show the effective configuration",
		Flags: append(globalFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, yaml, toml)",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the configuration to this file instead (format from its extension)",
			},
			&cli.BoolFlag{
				Name:  "defaults",
				Usage: "Use the built-in defaults, ignoring files and environment",
			},
		),
		Action: configAction,
	}
}

func configAction(c *cli.Context) error {
	cfg := config.DefaultConfig()
	if !c.Bool("defaults") {
		loaded, err := config.LoadConfig(globalString(c, "config"))
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if path := c.String("write"); path != "" {
		if err := config.SaveConfig(cfg, path); err != nil {
			return apperr.IO(err, "cannot write %s", path)
		}
		fmt.Fprintf(c.App.ErrWriter, "Configuration written to %s\n", path)
		return nil
	}

	data, err := config.Marshal(cfg, c.String("format"))
	if err != nil {
		return apperr.Wrap(apperr.KindConfiguration, err, "cannot render configuration")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = c.App.Writer.Write(data)
	return err
}
