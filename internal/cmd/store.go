package cmd

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/bayespart/blobstore"
	"github.com/hupe1980/bayespart/blobstore/minio"
	"github.com/hupe1980/bayespart/blobstore/s3"
	"github.com/hupe1980/bayespart/internal/config"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// openStore returns the blob store of the configured archive backend, or nil for
// the "none" backend.
func openStore(ctx context.Context, cfg config.ArchiveConfig) (blobstore.Store, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil

	case "local":
		return blobstore.NewLocalStore(cfg.Path), nil

	case "s3":
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = &cfg.Endpoint
				o.UsePathStyle = true
			}
		})
		return s3.NewStore(client, cfg.Bucket, cfg.Prefix), nil

	case "minio":
		client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.Secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return minio.NewStore(client, cfg.Bucket, cfg.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}
