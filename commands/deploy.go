package commands

import (
	"context"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/urfave/cli/v2"
)

func NewDeployCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "image-name",
			Usage:   "Managed image to create the VM from",
			Aliases: []string{"i"},
		},
		&cli.StringFlag{
			Name:    "vm-name",
			Usage:   "Name of the VM to create",
			Aliases: []string{"n"},
		},
		&cli.StringFlag{
			Name:    "subscription-id",
			Usage:   "Azure subscription of the image and the VM",
			Aliases: []string{"s"},
			EnvVars: []string{config.EnvSubscriptionID},
		},
		&cli.StringFlag{
			Name:    "resource-group",
			Usage:   "Resource group of the image and the VM",
			Aliases: []string{"g"},
			EnvVars: []string{config.EnvResourceGroup},
		},
		&cli.StringFlag{
			Name:    "location",
			Usage:   "Azure location, e.g. eastus",
			Aliases: []string{"l"},
			EnvVars: []string{config.EnvLocation},
		},
		&cli.StringFlag{
			Name:    "admin-username",
			Usage:   "Administrator account of the VM",
			Aliases: []string{"u"},
			EnvVars: []string{config.EnvAdminUsername},
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Administrator password of the VM",
			Aliases: []string{"p"},
			EnvVars: []string{config.EnvAdminPassword},
		},
		&cli.PathFlag{
			Name:    "repository-root",
			Usage:   "Path to the runner-images checkout that contains the helpers directory (default: current directory)",
			Aliases: []string{"r"},
			EnvVars: []string{config.EnvRepositoryRoot},
		},
	}

	return &cli.Command{
		Name:         "deploy",
		Usage:        "Create a VM from a managed image",
		UsageText:    "runner-image deploy --image-name <name> --vm-name <name> --subscription-id <id> --resource-group <name> --location <loc> --admin-username <user> --admin-password <pass> [options]",
		Flags:        append(flags, loginCheckFlags()...),
		OnUsageError: usageError,
		Action:       deployAction,
	}
}

func deployAction(c *cli.Context) error {
	rt := RuntimeFromContext(c.Context)
	reporter := rt.Reporter()

	if err := lib.CheckPrerequisites(rt.LookPath, rt.tools(lib.ToolPowerShell, lib.ToolAzureCLI)...); err != nil {
		return err
	}

	settings := rt.Settings
	params := schema.DeployParameters{
		ImageName:      c.String("image-name"),
		VMName:         c.String("vm-name"),
		SubscriptionID: config.Or(c.String("subscription-id"), settings.SubscriptionID),
		ResourceGroup:  config.Or(c.String("resource-group"), settings.ResourceGroup),
		Location:       config.Or(c.String("location"), settings.Location),
		AdminUsername:  config.Or(c.String("admin-username"), settings.AdminUsername),
		AdminPassword:  config.Or(c.String("admin-password"), settings.AdminPassword),
		RepositoryRoot: config.Or(c.Path("repository-root"), settings.RepositoryRoot),
	}

	if err := params.Validate(); err != nil {
		showCommandUsage(c)
		return errors.Wrap(err, "invalid parameters")
	}

	reporter.Info("Image: %s", params.ImageName)
	reporter.Info("VM name: %s", params.VMName)
	reporter.Info("Subscription: %s", params.SubscriptionID)
	reporter.Info("Resource group: %s", params.ResourceGroup)
	reporter.Info("Location: %s", params.Location)

	if !c.Bool("skip-login-check") {
		if err := rt.verifySession(c.Context, params.SubscriptionID, nil); err != nil {
			return err
		}
	}

	reporter.Info("Deploying VM...")
	logURI := config.Or(c.String("log-uri"), settings.LogURI)
	err := rt.runCollaborator(c.Context, "deploy", logURI, nil, func(ctx context.Context, streams lib.Streams) error {
		return rt.vmDeployer().DeployVM(ctx, params, streams)
	})
	if err != nil {
		return errors.Wrap(err, "VM deployment failed")
	}

	reporter.Success("VM %s deployed from image %s", params.VMName, params.ImageName)
	return nil
}
