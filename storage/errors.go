package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a raw file or run record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBucketRequired is returned by NewS3Store without a bucket name.
	ErrBucketRequired = errors.New("s3 bucket required")
)
