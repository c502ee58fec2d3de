package main

import (
	"context"
	"fmt"
	"io"

	"github.com/arencloud/bucketseed/internal/config"
	"github.com/arencloud/bucketseed/internal/logging"
	"github.com/arencloud/bucketseed/internal/models"
	"github.com/arencloud/bucketseed/internal/s3"
	"github.com/arencloud/bucketseed/internal/seeder"

	minio "github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	exitOK       = 0
	exitConfig   = 1
	exitProvider = 2
)

type storage interface {
	seeder.Storage
	seeder.Verifier
	ListObjects(ctx context.Context, bucket, prefix string, recursive bool) ([]minio.ObjectInfo, error)
}

type storageFactory func(models.Provider) (storage, error)

func newStorage(p models.Provider) (storage, error) {
	c, err := s3.NewFromProvider(p)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// exitCode maps an error to the process exit status. Errors that are not
// cli.ExitCoders come from flag parsing and count as configuration errors.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitConfig
}

func fail(err error) error {
	if config.IsConfigError(err) {
		return cli.Exit(err, exitConfig)
	}
	return cli.Exit(err, exitProvider)
}

// prepare applies flag overrides, validates and builds the storage client.
func prepare(c *cli.Context, base *config.Config, build storageFactory) (config.Config, storage, error) {
	cfg := applyFlags(c, *base)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fail(err)
	}
	store, err := build(cfg.Provider())
	if err != nil {
		return cfg, nil, fail(errors.Wrap(err, "build storage client"))
	}
	return cfg, store, nil
}

func seedAction(base *config.Config, logger logging.Logger, build storageFactory) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, store, err := prepare(c, base, build)
		if err != nil {
			return err
		}
		var opts []seeder.Option
		if verifyRequested(c) {
			opts = append(opts, seeder.WithVerify(store))
		}
		res, err := seeder.New(cfg, store, logger, opts...).Run(c.Context)
		if err != nil {
			return fail(err)
		}
		for _, o := range res.Objects {
			logger.Info("object stored", "bucket", o.Bucket, "key", o.Key, "size", o.Size, "etag", o.ETag)
		}
		logger.Info("seeding complete", "bucket", res.Bucket, "region", res.Region, "files", len(res.Objects))
		return nil
	}
}

func listAction(base *config.Config, logger logging.Logger, build storageFactory) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, store, err := prepare(c, base, build)
		if err != nil {
			return err
		}
		objs, err := store.ListObjects(c.Context, cfg.BucketName, c.String("prefix"), true)
		if err != nil {
			return fail(errors.Wrapf(err, "list %s", cfg.BucketName))
		}
		printObjects(c.App.Writer, objs)
		logger.Debug("listed objects", "bucket", cfg.BucketName, "count", len(objs))
		return nil
	}
}

func printObjects(w io.Writer, objs []minio.ObjectInfo) {
	for _, o := range objs {
		fmt.Fprintf(w, "%s\t%d\n", o.Key, o.Size)
	}
}
