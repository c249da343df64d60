package deployer

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the part of the S3 upload manager the deployer uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

func newS3Uploader(ctx context.Context, region string) (Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return manager.NewUploader(s3.NewFromConfig(cfg)), nil
}

// cacheControl keeps pages fresh and lets assets be cached.
func cacheControl(key string) string {
	if strings.HasSuffix(key, ".html") || strings.HasSuffix(key, ".json") {
		return "no-cache"
	}
	return "public, max-age=86400"
}

func (d *Deployer) uploadToS3(ctx context.Context, publicDir string) (int, error) {
	s3cfg := d.cfg.Deploy.S3

	if d.uploader == nil {
		u, err := newS3Uploader(ctx, s3cfg.Region)
		if err != nil {
			return 0, err
		}
		d.uploader = u
	}

	log.Infof("☁️  Uploading %s to s3://%s...", publicDir, s3cfg.Bucket)

	uploaded := 0
	err := filepath.Walk(publicDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(publicDir, p)
		if err != nil {
			return err
		}
		key := path.Join(s3cfg.Prefix, filepath.ToSlash(relPath))

		file, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", p, err)
		}
		defer file.Close()

		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		_, err = d.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s3cfg.Bucket),
			Key:          aws.String(key),
			Body:         file,
			ContentType:  aws.String(contentType),
			CacheControl: aws.String(cacheControl(key)),
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", relPath, err)
		}

		log.Debugf("uploaded %s to s3://%s/%s", relPath, s3cfg.Bucket, key)
		uploaded++
		return nil
	})

	return uploaded, err
}
