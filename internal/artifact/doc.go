// Package artifact stores experiment artifacts (real and synthetic tables,
// task records) in named buckets, either on the local filesystem or in a
// MinIO/S3 object store.
//
// Keys are slash-separated paths inside a bucket, typically derived from
// an experiment's storage path.
package artifact
