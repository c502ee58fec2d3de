package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/arencloud/bucketseed/internal/models"
)

// Region is where buckets are created. It is intentionally not read from the environment.
const Region = "eu-west-3"

const (
	DefaultEndpoint = "s3.amazonaws.com"
	DefaultMinFiles = 1
	DefaultMaxFiles = 6
)

type Config struct {
	Env             string
	Region          string
	BucketName      string // S3_BUCKET_NAME
	AccessKeyID     string // AWS_ACCESS_KEY_ID
	SecretAccessKey string // AWS_SECRET_ACCESS_KEY
	Endpoint        string // host[:port] or URL
	ProviderType    string // aws|minio|mcg|generic
	UseSSL          bool
	MinFiles        int
	MaxFiles        int
	TempDir         string // empty means os.TempDir()

	loadErrs Errors // malformed values seen by Load
}

func Load() *Config {
	var errs Errors
	cfg := &Config{
		Env:             getEnv("APP_ENV", "dev"),
		Region:          Region,
		BucketName:      strings.TrimSpace(os.Getenv("S3_BUCKET_NAME")),
		AccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Endpoint:        getEnv("S3_ENDPOINT", DefaultEndpoint),
		ProviderType:    getEnv("S3_PROVIDER", models.ProviderAWS),
		UseSSL:          getBool("S3_USE_SSL", true, &errs),
		MinFiles:        getInt("SEED_MIN_FILES", DefaultMinFiles, &errs),
		MaxFiles:        getInt("SEED_MAX_FILES", DefaultMaxFiles, &errs),
		TempDir:         getEnv("SEED_TEMP_DIR", ""),
	}
	cfg.loadErrs = errs
	return cfg
}

// Validate reports every missing or inconsistent setting at once.
// Bucket names are not checked against provider naming rules; the provider rejects bad names itself.
func (c *Config) Validate() error {
	errs := append(Errors(nil), c.loadErrs...)
	if c.BucketName == "" {
		errs = append(errs, &Error{Field: "BucketName", EnvVar: "S3_BUCKET_NAME", Reason: "must be set"})
	}
	if c.AccessKeyID == "" {
		errs = append(errs, &Error{Field: "AccessKeyID", EnvVar: "AWS_ACCESS_KEY_ID", Reason: "must be set"})
	}
	if c.SecretAccessKey == "" {
		errs = append(errs, &Error{Field: "SecretAccessKey", EnvVar: "AWS_SECRET_ACCESS_KEY", Reason: "must be set"})
	}
	if c.Region == "" {
		errs = append(errs, &Error{Field: "Region", Reason: "must be set"})
	}
	if c.MinFiles < 1 {
		errs = append(errs, &Error{Field: "MinFiles", EnvVar: "SEED_MIN_FILES", Reason: "must be at least 1"})
	}
	if c.MaxFiles < c.MinFiles {
		errs = append(errs, &Error{Field: "MaxFiles", EnvVar: "SEED_MAX_FILES", Reason: "must not be below MinFiles"})
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errs
}

// Provider converts the storage settings into the value the s3 client consumes.
func (c *Config) Provider() models.Provider {
	return models.Provider{
		Type:      c.ProviderType,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKeyID,
		SecretKey: c.SecretAccessKey,
		Region:    c.Region,
		UseSSL:    c.UseSSL,
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *Errors) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, &Error{Field: key, EnvVar: key, Reason: "must be an integer, got " + strconv.Quote(v)})
		return def
	}
	return n
}

func getBool(key string, def bool, errs *Errors) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, &Error{Field: key, EnvVar: key, Reason: "must be a boolean, got " + strconv.Quote(v)})
		return def
	}
	return b
}
