package commands

import (
	"fmt"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/urfave/cli/v2"
)

func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:      "config",
			Usage:     "Path to a json, json5 or yaml file with defaults for the command flags. Without extension, exactly one of <path>.json|.json5|.yaml|.yml must exist",
			Aliases:   []string{"c"},
			EnvVars:   []string{"RUNNER_IMAGE_CONFIG"},
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:      "env",
			Usage:     "Paths to .env files with defaults for the command flags (e.g. AZURE_SUBSCRIPTION_ID). Later files win",
			Aliases:   []string{"e"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Diagnostic log level: trace, debug, info, warn or error",
			Value:   "warn",
			EnvVars: []string{"RUNNER_IMAGE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Diagnostic log format: " + lib.LogFormatText + " or " + lib.LogFormatJSON,
			Value: lib.LogFormatText,
		},
		&cli.StringFlag{
			Name:    "powershell",
			Usage:   "PowerShell 7 executable used to run the helper scripts",
			EnvVars: []string{config.EnvPowerShell},
		},
	}
}

// BeforeCommand configures logging and loads the settings every command reads its defaults from
func BeforeCommand(c *cli.Context) error {
	rt := RuntimeFromContext(c.Context)

	if err := lib.ConfigureLogger(rt.Logger, c.String("log-level"), c.String("log-format")); err != nil {
		return err
	}

	settings, err := config.Load(c.Path("config"), c.StringSlice("env"))
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	settings.PowerShell = config.Or(c.String("powershell"), settings.PowerShell)
	rt.Settings = settings

	rt.Logger.WithField("config", c.Path("config")).Debug("configuration loaded")
	return nil
}

// RootAction runs when no known command was given
func RootAction(c *cli.Context) error {
	_ = cli.ShowAppHelp(c)

	if !c.Args().Present() {
		return errors.New("no command given")
	}
	return fmt.Errorf("unknown command %q", c.Args().First())
}

func RootUsageError(c *cli.Context, err error, _ bool) error {
	_ = cli.ShowAppHelp(c)
	return err
}

// showCommandUsage prints the usage of the command that is running
func showCommandUsage(c *cli.Context) {
	templ := c.Command.CustomHelpTemplate
	if templ == "" {
		templ = cli.CommandHelpTemplate
	}
	cli.HelpPrinter(c.App.Writer, templ, c.Command)
}

// usageError prints the command usage before returning the flag parsing error
func usageError(c *cli.Context, err error, _ bool) error {
	showCommandUsage(c)
	return err
}
