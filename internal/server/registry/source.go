package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mls/internal/common"
)

// Source loads a Registry from some backing store.
type Source interface {
	Load(ctx context.Context) (*Registry, error)
}

// S3Options configures the S3-compatible object store used by s3:// sources.
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// OpenSource picks a Source for location:
//
//	postgres://… or postgresql://…  licences table via pgx
//	sqlite://path                    licences table via modernc sqlite
//	s3://bucket/key                  registry document in object storage
//	anything else                    registry document on the local disk
func OpenSource(location string, s3opts S3Options) (Source, error) {
	switch {
	case location == "":
		return nil, fmt.Errorf("%w: empty registry location", common.ErrRegistryLoad)
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return NewSQLSource(DriverPostgres, location), nil
	case strings.HasPrefix(location, "sqlite://"):
		return NewSQLSource(DriverSQLite, strings.TrimPrefix(location, "sqlite://")), nil
	case strings.HasPrefix(location, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("%w: bad s3 location %q", common.ErrRegistryLoad, location)
		}
		return NewS3Source(bucket, key, s3opts), nil
	}
	return FileSource{Path: location}, nil
}

// Load opens location and loads the registry from it. Every failure wraps
// common.ErrRegistryLoad.
func Load(ctx context.Context, location string, s3opts S3Options) (*Registry, error) {
	src, err := OpenSource(location, s3opts)
	if err != nil {
		return nil, err
	}
	r, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRegistryLoad, err)
	}
	return r, nil
}
