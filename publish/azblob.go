package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/Azure/azure-storage-blob-go/2018-03-28/azblob"
	"github.com/pborman/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/dict"
)

const (
	TypeAzblob = "azblob"

	ConfigKeyContainerURL  = "container_url"
	ConfigKeyAzAccountName = "az_account_name"
	ConfigKeyAzSharedKey   = "az_shared_key"
)

func init() {
	Register(TypeAzblob, NewAzblob)
}

// Azblob uploads artifacts as block blobs under Basepath/RunID/name in
// an Azure storage container.
type Azblob struct {
	Basepath string
	RunID    string

	container azblob.ContainerURL
}

// NewAzblob builds an Azure blob publisher. Without an account name and
// shared key the container must allow anonymous writes, which is what
// SAS container URLs provide.
func NewAzblob(config dict.Dicter) (Publisher, error) {
	var (
		p   Azblob
		err error

		empty string
	)
	raw, err := config.String(ConfigKeyContainerURL, nil)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("publish: %v: %w", ConfigKeyContainerURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("publish: %v %q is not an absolute url", ConfigKeyContainerURL, raw)
	}
	if p.Basepath, err = config.String(ConfigKeyBasepath, &empty); err != nil {
		return nil, err
	}
	runID := uuid.New()
	if p.RunID, err = config.String(ConfigKeyRunID, &runID); err != nil {
		return nil, err
	}
	account, err := config.String(ConfigKeyAzAccountName, &empty)
	if err != nil {
		return nil, err
	}
	key, err := config.String(ConfigKeyAzSharedKey, &empty)
	if err != nil {
		return nil, err
	}

	var cred azblob.Credential = azblob.NewAnonymousCredential()
	if account != "" && key != "" {
		if _, err := base64.StdEncoding.DecodeString(key); err != nil {
			return nil, fmt.Errorf("publish: %v is not base64: %w", ConfigKeyAzSharedKey, err)
		}
		cred = azblob.NewSharedKeyCredential(account, key)
	}
	p.container = azblob.NewContainerURL(*u, azblob.NewPipeline(cred, azblob.PipelineOptions{}))
	return &p, nil
}

func (p *Azblob) Publish(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	// uploads are retried, so the body has to be seekable
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := path.Join(p.Basepath, p.RunID, name)
	blob := p.container.NewBlockBlobURL(key)
	_, err = blob.Upload(ctx, bytes.NewReader(body),
		azblob.BlobHTTPHeaders{ContentType: contentType}, azblob.Metadata{}, azblob.BlobAccessConditions{})
	if err != nil {
		return "", fmt.Errorf("publish: azblob upload %v: %w", key, err)
	}
	loc := blob.URL()
	log.Debug().Str("blob", loc.String()).Int("bytes", len(body)).Msg("uploaded")
	return loc.String(), nil
}
