package store

import (
	"context"

	"github.com/viant/annreg/config"
)

// FromConfig builds a resolver with local files and the SQLite catalog always
// available, plus the remote stores enabled in cfg.
func FromConfig(ctx context.Context, cfg config.StoresConfig) (*Resolver, error) {
	r := NewResolver()
	r.Register("sqlite", NewCatalogStore())
	if cfg.S3.Enabled {
		s, err := NewDefaultS3Store(ctx, cfg.S3.Region)
		if err != nil {
			return nil, err
		}
		r.Register("s3", s)
	}
	if cfg.MinIO.Endpoint != "" {
		s, err := DialMinIO(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.UseSSL)
		if err != nil {
			return nil, err
		}
		r.Register("minio", s)
	}
	return r, nil
}
