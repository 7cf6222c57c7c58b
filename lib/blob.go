package lib

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/dustin/go-humanize"
	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/schoolyear/runner-image-cli/schema"
)

type StorageAccountBlob struct {
	Service   string
	Container string
	Path      string
}

func (s StorageAccountBlob) URL() string {
	return fmt.Sprintf("%s/%s/%s", s.ServiceURL(), s.Container, s.Path)
}

func (s StorageAccountBlob) ServiceURL() string {
	return fmt.Sprintf("https://%s", s.Service)
}

// ParseBlobURI parses https://<account>.blob.core.windows.net/<container>[/<path>]
func ParseBlobURI(blobURI string) (*StorageAccountBlob, error) {
	parsed, err := url.ParseRequestURI(blobURI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse as an URI")
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("expected a storage account host in %s", blobURI)
	}

	pathParts := strings.SplitN(strings.TrimPrefix(parsed.Path, "/"), "/", 2)
	var blobPath string
	switch len(pathParts) {
	case 1:
		if len(strings.Trim(pathParts[0], "/")) == 0 {
			return nil, fmt.Errorf("expected at least container name to be included in URI path")
		}
	case 2:
		blobPath = strings.Trim(pathParts[1], "/")
	default:
		panic("programming error: no more than 2 entries expected")
	}

	return &StorageAccountBlob{
		Service:   parsed.Host,
		Container: pathParts[0],
		Path:      blobPath,
	}, nil
}

// TranscriptBlobName is unique per invocation: <command>-<timestamp>-<uuid>.log
func TranscriptBlobName(command string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s.log", command, now.UTC().Format("2006-01-02_15-04-05"), uuid.NewString())
}

type TranscriptUpload struct {
	URI              string
	Name             string
	Data             []byte
	ServicePrincipal *schema.ServicePrincipal
}

// BlobTranscriptUploader stores command transcripts in Azure Blob Storage
type BlobTranscriptUploader struct{}

func (BlobTranscriptUploader) Upload(ctx context.Context, upload TranscriptUpload) (string, error) {
	target, err := ParseBlobURI(upload.URI)
	if err != nil {
		return "", errors.Wrap(err, "invalid log URI")
	}
	target.Path = path.Join(target.Path, upload.Name)

	cred, err := NewAzureCredential(upload.ServicePrincipal)
	if err != nil {
		return "", err
	}

	azBlobClient, err := azblob.NewClient(target.ServiceURL(), cred, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to initialize Azure SDK")
	}

	bar := progressbar.DefaultBytes(int64(len(upload.Data)), fmt.Sprintf("Uploading transcript (%s)", humanize.Bytes(uint64(len(upload.Data)))))
	defer bar.Exit()

	progressReader := progressbar.NewReader(bytes.NewReader(upload.Data), bar)
	defer progressReader.Close()

	if _, err := azBlobClient.UploadStream(ctx, target.Container, target.Path, &progressReader, nil); err != nil {
		return "", errors.Wrap(err, "failed to upload")
	}

	bar.Finish()
	return target.URL(), nil
}
