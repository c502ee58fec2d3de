package seeder

import (
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/arencloud/bucketseed/internal/config"
	"github.com/arencloud/bucketseed/internal/logging"
	"github.com/arencloud/bucketseed/internal/models"
	"github.com/arencloud/bucketseed/internal/s3"

	"github.com/google/uuid"
	minio "github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

const contentType = "text/plain"

// Storage is the slice of the s3 client a run needs.
type Storage interface {
	CreateBucket(ctx context.Context, name, region string) error
	Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (minio.UploadInfo, error)
}

// Verifier reads back object metadata after an upload.
type Verifier interface {
	Stat(ctx context.Context, bucket, key string) (minio.ObjectInfo, error)
}

var (
	_ Storage  = (*s3.Client)(nil)
	_ Verifier = (*s3.Client)(nil)
)

// Rand draws integers in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Option func(*Seeder)

// WithVerify stats every object right after its upload and fails the run on a size mismatch.
func WithVerify(v Verifier) Option { return func(s *Seeder) { s.verifier = v } }

// WithRand pins the source used to draw the file count.
func WithRand(r Rand) Option { return func(s *Seeder) { s.rand = r } }

// WithIDGenerator replaces uuid.NewString as the source of file contents.
func WithIDGenerator(fn func() string) Option { return func(s *Seeder) { s.newID = fn } }

type Seeder struct {
	cfg      config.Config
	store    Storage
	verifier Verifier
	logger   logging.Logger
	rand     Rand
	newID    func() string
}

// Result lists what a successful run left in the bucket.
type Result struct {
	Bucket  string
	Region  string
	Objects []models.UploadedObject
}

func New(cfg config.Config, store Storage, logger logging.Logger, opts ...Option) *Seeder {
	s := &Seeder{
		cfg:    cfg,
		store:  store,
		logger: logger,
		rand:   globalRand{},
		newID:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	return s
}

// Count draws the number of files to generate from [MinFiles, MaxFiles].
func (s *Seeder) Count() int {
	lo, hi := s.cfg.MinFiles, s.cfg.MaxFiles
	return lo + s.rand.IntN(hi-lo+1)
}

// Run creates the bucket and uploads the generated files. Configuration problems
// are reported before the storage client is touched.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	bucket, region := s.cfg.BucketName, s.cfg.Region

	if err := s.store.CreateBucket(ctx, bucket, region); err != nil {
		if !s3.IsBucketOwnedByYou(err) {
			return nil, &BucketCreationError{Bucket: bucket, Region: region, Err: err}
		}
		s.logger.Info("bucket already owned by caller", "bucket", bucket, "region", region)
	} else {
		s.logger.Info("bucket created", "bucket", bucket, "region", region)
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "bucketseed-")
	if err != nil {
		return nil, errors.Wrap(err, "create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Error("remove temp dir", "dir", dir, "error", rmErr)
		}
	}()

	n := s.Count()
	s.logger.Info("creating files", "count", n, "bucket", bucket)

	res := &Result{Bucket: bucket, Region: region, Objects: make([]models.UploadedObject, 0, n)}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, &UploadError{Bucket: bucket, Key: models.FileName(i), Index: i, Err: err}
		}
		s.logger.Info("creating file", "n", i+1, "of", n)
		f := models.GeneratedFile{Name: models.FileName(i), Content: s.newID()}
		obj, err := s.uploadFile(ctx, dir, bucket, f)
		if err != nil {
			return res, &UploadError{Bucket: bucket, Key: f.Name, Index: i, Err: err}
		}
		res.Objects = append(res.Objects, obj)
	}
	return res, nil
}

// uploadFile writes f under dir, streams it back to the bucket and removes the local copy.
func (s *Seeder) uploadFile(ctx context.Context, dir, bucket string, f models.GeneratedFile) (models.UploadedObject, error) {
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, []byte(f.Content), 0o600); err != nil {
		return models.UploadedObject{}, errors.Wrap(err, "write local file")
	}
	defer os.Remove(path)

	fh, err := os.Open(path)
	if err != nil {
		return models.UploadedObject{}, errors.Wrap(err, "open local file")
	}
	defer fh.Close()
	st, err := fh.Stat()
	if err != nil {
		return models.UploadedObject{}, errors.Wrap(err, "stat local file")
	}

	info, err := s.store.Upload(ctx, bucket, f.Name, fh, st.Size(), contentType)
	if err != nil {
		return models.UploadedObject{}, err
	}
	s.logger.Debug("uploaded", "bucket", bucket, "key", f.Name, "etag", info.ETag)
	obj := models.UploadedObject{Bucket: bucket, Key: f.Name, Size: st.Size(), ETag: info.ETag}
	if s.verifier != nil {
		if err := s.verify(ctx, obj); err != nil {
			return models.UploadedObject{}, err
		}
	}
	return obj, nil
}

func (s *Seeder) verify(ctx context.Context, obj models.UploadedObject) error {
	remote, err := s.verifier.Stat(ctx, obj.Bucket, obj.Key)
	if err != nil {
		return errors.Wrap(err, "stat uploaded object")
	}
	if remote.Size != obj.Size {
		return errors.Errorf("size mismatch: wrote %d bytes, provider reports %d", obj.Size, remote.Size)
	}
	s.logger.Debug("verified", "bucket", obj.Bucket, "key", obj.Key, "size", remote.Size)
	return nil
}
