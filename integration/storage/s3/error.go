package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig      = errors.New("s3: bucket and region are required")
	ErrBucketNotFound     = errors.New("s3: bucket not found")
	ErrServiceUnavailable = errors.New("s3: service unavailable")
	ErrRequestTimeout     = errors.New("s3: request timeout")
)

// classifyS3Error maps S3 failures onto io/fs sentinels where one fits, so
// callers can test with errors.Is(err, fs.ErrNotExist) as they would for a
// local directory. Context errors stay matchable.
func classifyS3Error(err error, operation, key string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("s3 %s %q: %w", operation, key, err)
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return &fs.PathError{Op: operation, Path: key, Err: fs.ErrNotExist}
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.ErrorCode(); code {
		case "NoSuchKey", "NotFound":
			return &fs.PathError{Op: operation, Path: key, Err: fs.ErrNotExist}
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return &fs.PathError{Op: operation, Path: key, Err: fs.ErrPermission}
		case "RequestTimeout":
			return fmt.Errorf("%w: %s %q", ErrRequestTimeout, operation, key)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s %q", ErrServiceUnavailable, operation, key)
		default:
			return fmt.Errorf("s3 %s %q failed (code: %s): %w", operation, key, code, err)
		}
	}

	return fmt.Errorf("s3 %s %q failed: %w", operation, key, err)
}
