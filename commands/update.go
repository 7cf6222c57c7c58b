package commands

import (
	"fmt"

	"github.com/friendsofgo/errors"
	"github.com/schoolyear/runner-image-cli/lib"
	"github.com/schoolyear/runner-image-cli/static"
	"github.com/urfave/cli/v2"
	"golang.org/x/mod/semver"
)

func NewUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Update runner-image to the latest release",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Usage:   "Automatic yes to prompts; assume \"yes\" as answer to all prompts and run non-interactively.",
				Aliases: []string{"y"},
			},
			&cli.BoolFlag{
				Name:  "downgrade",
				Usage: "Force update to a lower version",
			},
		},
		OnUsageError: usageError,
		Action:       updateAction,
	}
}

type updateDecision int

const (
	updateUpToDate updateDecision = iota
	updateUpgrade
	updateDowngrade
)

func decideUpdate(current, latest string, allowDowngrade bool) (updateDecision, error) {
	if current == latest {
		return updateUpToDate, nil
	}

	if semver.IsValid(current) && semver.IsValid(latest) && semver.Compare(current, latest) == 1 {
		if !allowDowngrade {
			return updateUpToDate, errors.New("the latest public version is older than your current version. Use --downgrade to install the latest public version anyway")
		}
		return updateDowngrade, nil
	}

	return updateUpgrade, nil
}

func updateAction(c *cli.Context) error {
	rt := RuntimeFromContext(c.Context)
	out := rt.Stdout

	execPath, err := rt.Executable()
	if err != nil {
		return errors.Wrap(err, "could not get the path of the current executable")
	}
	tmpFile := execPath + ".tmp"

	client := lib.NewReleaseClient()

	_, _ = fmt.Fprintln(out, "Checking latest version...")
	release, err := lib.FetchLatestRelease(c.Context, client, rt.GithubAPIBase, static.GithubReleaseOwner, static.GithubReleaseRepo, static.ReleaseFile)
	if err != nil {
		return errors.Wrap(err, "failed to fetch latest version")
	}

	_, _ = fmt.Fprintf(out, "Current: \t%s\nLatest: \t%s\n", c.App.Version, release.Version)
	decision, err := decideUpdate(c.App.Version, release.Version, c.Bool("downgrade"))
	if err != nil {
		return err
	}

	switch decision {
	case updateUpToDate:
		_, _ = fmt.Fprintln(out, "You are on the latest version already!")
		return nil
	case updateDowngrade:
		_, _ = fmt.Fprintln(out, "Note: this is a downgrade")
	}

	_, _ = fmt.Fprintf(out, "Download from:\t%s\n", release.DownloadURL)
	_, _ = fmt.Fprintf(out, "Download to:\t%s\n", tmpFile)
	_, _ = fmt.Fprintf(out, "Install to:\t%s\n", execPath)

	if !c.Bool("yes") && !rt.confirm("Do you want to download & install the update") {
		_, _ = fmt.Fprintln(out, `update canceled. You must enter "yes" or "y" to confirm.`)
		return nil
	}

	if err := lib.DownloadExecutable(c.Context, client, release.DownloadURL, execPath, tmpFile); err != nil {
		return errors.Wrap(err, "failed to perform update")
	}

	rt.Reporter().Success("Update complete!")
	return nil
}
