package main

import (
	"context"
	"os"

	"github.com/schoolyear/runner-image-cli/commands"
	"github.com/schoolyear/runner-image-cli/embeddedfiles"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/urfave/cli/v2"
)

func main() {
	rt := commands.NewRuntime(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(run(context.Background(), os.Args, rt))
}

func newApp(rt *commands.Runtime) *cli.App {
	return &cli.App{
		Name:        "runner-image",
		Usage:       "build CI runner VM images and deploy VMs from them",
		Description: "Checks the required tools, validates the parameters and runs the helper scripts of a runner-images checkout.\n\nEXAMPLES:\n\n" + embeddedfiles.UsageExamples,
		Version:     static.Version,
		Suggest:     true,
		Commands: cli.Commands{
			commands.NewBuildCommand(),
			commands.NewDeployCommand(),
			commands.NewUpdateCommand(),
		},
		Flags:        commands.GlobalFlags(),
		Before:       commands.BeforeCommand,
		Action:       commands.RootAction,
		OnUsageError: commands.RootUsageError,
		Reader:       rt.Stdin,
		Writer:       rt.Stdout,
		ErrWriter:    rt.Stderr,
		// the exit code is decided by run
		ExitErrHandler: func(*cli.Context, error) {},
		Authors: []*cli.Author{
			{
				Name:  "Schoolyear",
				Email: "support@schoolyear.com",
			},
		},
		Copyright: "Schoolyear",
	}
}

func run(ctx context.Context, args []string, rt *commands.Runtime) int {
	ctx = commands.WithRuntime(ctx, rt)
	app := newApp(rt)

	if helpArgs, ok := commands.HelpArgs(app, args); ok {
		// help must render even when the configuration is broken
		app.Before = nil
		if err := app.RunContext(ctx, helpArgs); err != nil {
			rt.Logger.WithError(err).Debug("failed to render help")
		}
		return 0
	}

	if err := app.RunContext(ctx, args); err != nil {
		rt.Reporter().Error("%s", err.Error())
		return 1
	}
	return 0
}
