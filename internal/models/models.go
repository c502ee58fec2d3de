package models

// Provider types understood by the storage client.
const (
	ProviderAWS     = "aws"
	ProviderMinIO   = "minio"
	ProviderMCG     = "mcg"
	ProviderGeneric = "generic"
)

// Provider describes how to reach an S3-compatible endpoint.
type Provider struct {
	Type      string // aws|minio|mcg|generic
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}
