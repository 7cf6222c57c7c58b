package commands

import (
	"context"
	"strings"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/config"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/schema"
	"github.com/urfave/cli/v2"
)

func NewBuildCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "image-type",
			Usage:   "Image to build, one of: " + strings.Join(schema.ImageTypeNames(), ", "),
			Aliases: []string{"t"},
		},
		&cli.StringFlag{
			Name:    "subscription-id",
			Usage:   "Azure subscription to build the image in",
			Aliases: []string{"s"},
			EnvVars: []string{config.EnvSubscriptionID},
		},
		&cli.StringFlag{
			Name:    "resource-group",
			Usage:   "Resource group that receives the managed image",
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
			Name:    "client-id",
			Usage:   "Service principal client ID. Requires --client-secret and --tenant-id, which are read from the keyring when saved earlier",
			EnvVars: []string{config.EnvClientID},
		},
		&cli.StringFlag{
			Name:    "client-secret",
			Usage:   "Service principal client secret",
			EnvVars: []string{config.EnvClientSecret},
		},
		&cli.StringFlag{
			Name:    "tenant-id",
			Usage:   "Service principal tenant ID",
			EnvVars: []string{config.EnvTenantID},
		},
		&cli.StringFlag{
			Name:  "managed-image-name",
			Usage: "Name of the managed image. The helper script picks a name when omitted",
		},
		&cli.StringFlag{
			Name:  "tags",
			Usage: "A comma separated list of key=value tags for the created resources",
		},
		&cli.StringFlag{
			Name:  "on-error",
			Usage: "Packer behaviour on build errors, one of: " + strings.Join(schema.OnErrorPolicies, ", "),
		},
		&cli.BoolFlag{
			Name:  "restrict-to-agent-ip",
			Usage: "Only allow the IP address of this machine to access the build VM",
		},
		&cli.BoolFlag{
			Name:  "reuse-resource-group",
			Usage: "Use the resource group when it already exists",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Delete the resource group when it already exists",
		},
		&cli.PathFlag{
			Name:    "repository-root",
			Usage:   "Path to the runner-images checkout that contains the helpers directory (default: current directory)",
			Aliases: []string{"r"},
			EnvVars: []string{config.EnvRepositoryRoot},
		},
		&cli.BoolFlag{
			Name:  "save-credentials",
			Usage: "Save the service principal secret and tenant in the OS keyring after a successful login check",
		},
		&cli.BoolFlag{
			Name:  "no-keyring",
			Usage: "Do not read service principal secrets from the OS keyring",
		},
	}

	return &cli.Command{
		Name:         "build",
		Usage:        "Build a managed VM image with packer",
		UsageText:    "runner-image build --image-type <type> --subscription-id <id> --resource-group <name> --location <loc> [--client-id <id>] [--client-secret <secret>] [--tenant-id <id>] [options]",
		Flags:        append(flags, loginCheckFlags()...),
		OnUsageError: usageError,
		Action:       buildAction,
	}
}

func buildAction(c *cli.Context) error {
	rt := RuntimeFromContext(c.Context)
	reporter := rt.Reporter()

	if err := lib.CheckPrerequisites(rt.LookPath, rt.tools(lib.ToolPowerShell, lib.ToolAzureCLI, lib.ToolPacker)...); err != nil {
		return err
	}

	tags, err := parseTags(c.String("tags"))
	if err != nil {
		showCommandUsage(c)
		return errors.Wrap(err, "invalid --tags")
	}

	settings := rt.Settings
	params := schema.BuildParameters{
		ImageType:          schema.ParseImageType(c.String("image-type")),
		SubscriptionID:     config.Or(c.String("subscription-id"), settings.SubscriptionID),
		ResourceGroup:      config.Or(c.String("resource-group"), settings.ResourceGroup),
		Location:           config.Or(c.String("location"), settings.Location),
		ClientID:           config.Or(c.String("client-id"), settings.ClientID),
		ClientSecret:       config.Or(c.String("client-secret"), settings.ClientSecret),
		TenantID:           config.Or(c.String("tenant-id"), settings.TenantID),
		ManagedImageName:   c.String("managed-image-name"),
		Tags:               tags,
		OnError:            c.String("on-error"),
		RestrictToAgentIP:  c.Bool("restrict-to-agent-ip"),
		ReuseResourceGroup: c.Bool("reuse-resource-group"),
		Force:              c.Bool("force"),
		RepositoryRoot:     config.Or(c.Path("repository-root"), settings.RepositoryRoot),
	}

	if !c.Bool("no-keyring") {
		rt.fillServicePrincipalFromKeyring(&params)
	}

	if err := params.Validate(); err != nil {
		showCommandUsage(c)
		return errors.Wrap(err, "invalid parameters")
	}

	// only credentials that passed the login check are cached
	if c.Bool("save-credentials") && c.Bool("skip-login-check") {
		showCommandUsage(c)
		return errors.New("--save-credentials cannot be combined with --skip-login-check")
	}

	reporter.Info("Image type: %s", params.ImageType)
	reporter.Info("Subscription: %s", params.SubscriptionID)
	reporter.Info("Resource group: %s", params.ResourceGroup)
	reporter.Info("Location: %s", params.Location)

	sp := params.ServicePrincipal()
	if sp != nil {
		reporter.Info("Service principal: %s", sp.ClientID)
	}

	if !c.Bool("skip-login-check") {
		if err := rt.verifySession(c.Context, params.SubscriptionID, sp); err != nil {
			return err
		}
	}

	if c.Bool("save-credentials") {
		rt.saveServicePrincipal(sp)
	}

	reporter.Info("Generating image. This can take a few hours...")
	logURI := config.Or(c.String("log-uri"), settings.LogURI)
	err = rt.runCollaborator(c.Context, "build", logURI, sp, func(ctx context.Context, streams lib.Streams) error {
		return rt.imageGenerator().GenerateImage(ctx, params, streams)
	})
	if err != nil {
		return errors.Wrap(err, "image generation failed")
	}

	reporter.Success("Image %s built in resource group %s", params.ImageType, params.ResourceGroup)
	return nil
}

var errMalformedTags = errors.New("tags are malformed, must be: key1=value1,key2=value2")

func parseTags(tagStr string) (map[string]string, error) {
	if tagStr == "" {
		return nil, nil
	}

	splitTags := strings.Split(tagStr, ",")
	tags := make(map[string]string, len(splitTags))
	for _, tag := range splitTags {
		key, value, ok := strings.Cut(tag, "=")
		if !ok || len(key) == 0 || len(value) == 0 || strings.Contains(value, "=") {
			return nil, errMalformedTags
		}

		tags[key] = value
	}

	return tags, nil
}
