// Package seeder provisions a bucket and fills it with a random number of
// generated files.
//
// A run creates the configured bucket, draws a file count uniformly from the
// configured range (default [1, 6]; the caller can narrow the range but not
// pick the count), then for each index i writes a random UUID to a local
// temporary file and uploads it as file_{i}.txt. Uploads happen one at a time
// in index order and the first failure ends the run. Objects uploaded before
// a failure are left in the bucket.
package seeder
