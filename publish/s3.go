package publish

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pborman/uuid"
	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/dict"
)

const (
	TypeS3 = "s3"

	ConfigKeyBucket       = "bucket"
	ConfigKeyBasepath     = "basepath"
	ConfigKeyRegion       = "region"
	ConfigKeyEndpoint     = "endpoint"
	ConfigKeyAWSAccessKey = "aws_access_key_id"
	ConfigKeyAWSSecretKey = "aws_secret_access_key"
	ConfigKeyRunID        = "run_id"

	DefaultRegion = "us-east-1"
)

func init() {
	Register(TypeS3, NewS3)
}

// S3 uploads artifacts to Bucket under Basepath/RunID/name.
type S3 struct {
	Bucket   string
	Basepath string
	// RunID separates the artifacts of one run from another.
	RunID string

	uploader *s3manager.Uploader
}

// NewS3 builds an S3 publisher. Static keys are optional; without them
// the default AWS credential chain is used.
func NewS3(config dict.Dicter) (Publisher, error) {
	var (
		p   S3
		err error

		region   = DefaultRegion
		empty    string
		endpoint string
		key      string
		secret   string
	)
	if p.Bucket, err = config.String(ConfigKeyBucket, nil); err != nil {
		return nil, err
	}
	if p.Basepath, err = config.String(ConfigKeyBasepath, &empty); err != nil {
		return nil, err
	}
	runID := uuid.New()
	if p.RunID, err = config.String(ConfigKeyRunID, &runID); err != nil {
		return nil, err
	}
	if region, err = config.String(ConfigKeyRegion, &region); err != nil {
		return nil, err
	}
	if endpoint, err = config.String(ConfigKeyEndpoint, &empty); err != nil {
		return nil, err
	}
	if key, err = config.String(ConfigKeyAWSAccessKey, &empty); err != nil {
		return nil, err
	}
	if secret, err = config.String(ConfigKeyAWSSecretKey, &empty); err != nil {
		return nil, err
	}

	awsConfig := aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		awsConfig.Endpoint = aws.String(endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if key != "" && secret != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(key, secret, "")
	}
	sess, err := session.NewSession(&awsConfig)
	if err != nil {
		return nil, err
	}
	p.uploader = s3manager.NewUploader(sess)
	return &p, nil
}

func (p *S3) key(name string) string {
	return path.Join(p.Basepath, p.RunID, name)
}

func (p *S3) Publish(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key := p.key(name)
	out, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("publish: s3 upload %v: %w", key, err)
	}
	log.Debug().Str("bucket", p.Bucket).Str("key", key).Msg("uploaded")
	return out.Location, nil
}
