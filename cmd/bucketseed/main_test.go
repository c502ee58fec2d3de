package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arencloud/bucketseed/internal/config"
	"github.com/arencloud/bucketseed/internal/logging"
	"github.com/arencloud/bucketseed/internal/models"

	minio "github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type memStorage struct {
	provider  models.Provider
	createErr error
	uploadErr error
	keys      []string
	sizes     map[string]int64
	stats     []string
	statDelta int64 // added to reported sizes
}

func (m *memStorage) CreateBucket(context.Context, string, string) error { return m.createErr }

func (m *memStorage) Upload(_ context.Context, bucket, key string, r io.Reader, size int64, _ string) (minio.UploadInfo, error) {
	if m.uploadErr != nil {
		return minio.UploadInfo{}, m.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	m.keys = append(m.keys, key)
	if m.sizes == nil {
		m.sizes = map[string]int64{}
	}
	m.sizes[key] = size
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (m *memStorage) Stat(_ context.Context, _ string, key string) (minio.ObjectInfo, error) {
	m.stats = append(m.stats, key)
	return minio.ObjectInfo{Key: key, Size: m.sizes[key] + m.statDelta}, nil
}

func (m *memStorage) ListObjects(_ context.Context, _ string, prefix string, _ bool) ([]minio.ObjectInfo, error) {
	var out []minio.ObjectInfo
	for _, k := range m.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, minio.ObjectInfo{Key: k, Size: 36})
		}
	}
	return out, nil
}

func factory(m *memStorage) storageFactory {
	return func(p models.Provider) (storage, error) {
		m.provider = p
		return m, nil
	}
}

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Region:          config.Region,
		BucketName:      "test-bucket",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		Endpoint:        config.DefaultEndpoint,
		ProviderType:    models.ProviderAWS,
		UseSSL:          true,
		MinFiles:        config.DefaultMinFiles,
		MaxFiles:        config.DefaultMaxFiles,
		TempDir:         t.TempDir(),
	}
}

func runApp(t *testing.T, cfg *config.Config, m *memStorage, args ...string) (int, string) {
	t.Helper()
	app := newApp(cfg, logging.Nop(), factory(m))
	var out bytes.Buffer
	app.Writer = &out
	err := app.RunContext(context.Background(), append([]string{"bucketseed"}, args...))
	return exitCode(err), out.String()
}

func TestSeedWithFlagOverrides(t *testing.T) {
	m := &memStorage{}
	code, _ := runApp(t, validConfig(t), m, "seed", "--min-files", "2", "--max-files", "2", "--endpoint", "http://localhost:9000", "--provider", "minio")
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"file_0.txt", "file_1.txt"}, m.keys)
	assert.Equal(t, "http://localhost:9000", m.provider.Endpoint)
	assert.Equal(t, "minio", m.provider.Type)
	assert.Equal(t, config.Region, m.provider.Region)
}

func TestFlagsBeforeSubcommand(t *testing.T) {
	m := &memStorage{}
	code, _ := runApp(t, validConfig(t), m, "--min-files", "2", "--max-files", "2", "--provider", "minio", "seed")
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"file_0.txt", "file_1.txt"}, m.keys)
	assert.Equal(t, "minio", m.provider.Type)

	m = &memStorage{keys: []string{"file_0.txt"}}
	code, out := runApp(t, validConfig(t), m, "--endpoint", "http://localhost:9000", "ls")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "http://localhost:9000", m.provider.Endpoint)
	assert.Equal(t, "file_0.txt\t36\n", out)
}

func TestSubcommandFlagWinsOverAppFlag(t *testing.T) {
	m := &memStorage{}
	code, _ := runApp(t, validConfig(t), m, "--max-files", "5", "seed", "--min-files", "1", "--max-files", "1")
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"file_0.txt"}, m.keys)
}

func TestVerifyFlag(t *testing.T) {
	m := &memStorage{}
	code, _ := runApp(t, validConfig(t), m, "--verify", "seed", "--min-files", "3", "--max-files", "3")
	require.Equal(t, exitOK, code)
	assert.Equal(t, []string{"file_0.txt", "file_1.txt", "file_2.txt"}, m.stats)

	m = &memStorage{}
	code, _ = runApp(t, validConfig(t), m, "seed", "--min-files", "3", "--max-files", "3")
	require.Equal(t, exitOK, code)
	assert.Empty(t, m.stats)

	m = &memStorage{statDelta: 1}
	code, _ = runApp(t, validConfig(t), m, "seed", "--verify", "--min-files", "3", "--max-files", "3")
	assert.Equal(t, exitProvider, code)
	assert.Equal(t, []string{"file_0.txt"}, m.stats)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	// a directory opens fine but cannot be read as a file
	assert.Error(t, loadDotEnv(dir))

	path := filepath.Join(dir, "good.env")
	require.NoError(t, os.WriteFile(path, []byte("BUCKETSEED_TEST_KEY=from-dotenv\n"), 0o600))
	t.Setenv("BUCKETSEED_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("BUCKETSEED_TEST_KEY"))
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("BUCKETSEED_TEST_KEY"))
}

func TestDefaultActionSeeds(t *testing.T) {
	m := &memStorage{}
	code, _ := runApp(t, validConfig(t), m)
	require.Equal(t, exitOK, code)
	assert.GreaterOrEqual(t, len(m.keys), 1)
	assert.LessOrEqual(t, len(m.keys), 6)
}

func TestMissingBucketIsConfigError(t *testing.T) {
	cfg := validConfig(t)
	cfg.BucketName = ""
	m := &memStorage{}
	code, _ := runApp(t, cfg, m, "seed")
	assert.Equal(t, exitConfig, code)
	assert.Empty(t, m.provider.Region, "storage must not be built")
}

func TestBadFileRangeIsConfigError(t *testing.T) {
	code, _ := runApp(t, validConfig(t), &memStorage{}, "seed", "--min-files", "5", "--max-files", "2")
	assert.Equal(t, exitConfig, code)
}

func TestProviderErrorsExitTwo(t *testing.T) {
	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}

	code, _ := runApp(t, validConfig(t), &memStorage{createErr: denied}, "seed")
	assert.Equal(t, exitProvider, code)

	code, _ = runApp(t, validConfig(t), &memStorage{uploadErr: denied}, "seed")
	assert.Equal(t, exitProvider, code)
}

func TestStorageBuildFailureExitsTwo(t *testing.T) {
	app := newApp(validConfig(t), logging.Nop(), func(models.Provider) (storage, error) {
		return nil, errors.New("bad endpoint")
	})
	err := app.RunContext(context.Background(), []string{"bucketseed", "seed"})
	assert.Equal(t, exitProvider, exitCode(err))
}

func TestListCommand(t *testing.T) {
	m := &memStorage{keys: []string{"file_0.txt", "file_1.txt"}}
	code, out := runApp(t, validConfig(t), m, "ls")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "file_0.txt\t36\nfile_1.txt\t36\n", out)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitConfig, exitCode(errors.New("flag provided but not defined: -x")))
	assert.Equal(t, exitProvider, exitCode(cli.Exit("boom", exitProvider)))
	assert.Equal(t, exitConfig, exitCode(fail(&config.Error{Field: "BucketName", Reason: "must be set"})))
}
