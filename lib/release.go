package lib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/buger/jsonparser"
	"github.com/friendsofgo/errors"
	"github.com/go-resty/resty/v2"
	"github.com/schollz/progressbar/v3"
)

const (
	releaseTimeout       = 10 * time.Second
	releaseRetryCount    = 2
	releaseRetryWaitTime = 1 * time.Second
)

var ErrReleaseAssetNotFound = errors.New("release asset not found")

func NewReleaseClient() *resty.Client {
	return resty.New().
		SetTimeout(releaseTimeout).
		SetRetryCount(releaseRetryCount).
		SetRetryWaitTime(releaseRetryWaitTime)
}

type Release struct {
	Version     string
	DownloadURL string
}

// FetchLatestRelease looks up the latest GitHub release and the download URL of assetName
func FetchLatestRelease(ctx context.Context, client *resty.Client, apiBase, owner, repo, assetName string) (*Release, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", apiBase, url.PathEscape(owner), url.PathEscape(repo))

	res, err := client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		Get(apiURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to request latest release from Github")
	}

	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("expected 200 status code, got %d: %s", res.StatusCode(), res.String())
	}

	body := res.Body()
	version, err := jsonparser.GetString(body, "tag_name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tag_name from release")
	}

	var downloadURL string
	_, err = jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		name, err := jsonparser.GetString(value, "name")
		if err != nil || name != assetName {
			return
		}
		downloadURL, _ = jsonparser.GetString(value, "browser_download_url")
	}, "assets")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, errors.Wrap(err, "failed to read assets from release")
	}

	if downloadURL == "" {
		return nil, errors.Wrapf(ErrReleaseAssetNotFound, "%s in release %s", assetName, version)
	}

	return &Release{
		Version:     version,
		DownloadURL: downloadURL,
	}, nil
}

// DownloadExecutable downloads to tmpFilePath and then replaces targetPath, keeping its permissions
func DownloadExecutable(ctx context.Context, client *resty.Client, downloadURL, targetPath, tmpFilePath string) error {
	originalFileInfo, err := os.Stat(targetPath)
	if err != nil {
		return errors.Wrap(err, "failed to get the file permissions of the current executable")
	}

	tmpFile, err := os.OpenFile(tmpFilePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, originalFileInfo.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", tmpFilePath)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFilePath)
	}()

	res, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(downloadURL)
	if err != nil {
		return errors.Wrap(err, "failed to request download")
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to download latest version: %s", res.Status())
	}

	downloadProgress := progressbar.DefaultBytes(
		res.RawResponse.ContentLength,
		"Downloading",
	)

	if _, err := io.Copy(io.MultiWriter(tmpFile, downloadProgress), body); err != nil {
		return errors.Wrap(err, "failed to download and write update to disk")
	}

	if err := tmpFile.Close(); err != nil {
		return errors.Wrap(err, "failed to flush the downloaded update")
	}

	if err := os.Rename(tmpFilePath, targetPath); err != nil {
		return errors.Wrap(err, "failed to replace current version with newly downloaded version")
	}

	return nil
}
