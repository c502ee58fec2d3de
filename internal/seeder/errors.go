package seeder

import "fmt"

// BucketCreationError means the provider refused to create the target bucket.
type BucketCreationError struct {
	Bucket string
	Region string
	Err    error
}

func (e *BucketCreationError) Error() string {
	return fmt.Sprintf("create bucket %q in %s: %v", e.Bucket, e.Region, e.Err)
}

func (e *BucketCreationError) Unwrap() error { return e.Err }

// UploadError identifies the object that could not be stored.
type UploadError struct {
	Bucket string
	Key    string
	Index  int
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
