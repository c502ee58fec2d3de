package models

import "fmt"

// GeneratedFile is a file produced locally before it is uploaded.
type GeneratedFile struct {
	Name    string
	Content string
}

// FileName returns the object key used for the i-th generated file.
func FileName(i int) string { return fmt.Sprintf("file_%d.txt", i) }

// UploadedObject records an object stored in a bucket.
type UploadedObject struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}
