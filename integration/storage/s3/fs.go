package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/assetserve/core/static"
)

var _ static.FileSystem = (*FS)(nil)

// S3Client defines the S3 operations FS needs. *s3.Client satisfies it.
type S3Client interface {
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3aws.ListObjectsV2Input, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
}

// Config contains configuration for an S3-backed asset tree.
type Config struct {
	Bucket         string `env:"S3_BUCKET" yaml:"bucket"`
	Region         string `env:"S3_REGION" yaml:"region"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretKey      string `env:"S3_SECRET_KEY" yaml:"secret_key"`
	Endpoint       string `env:"S3_ENDPOINT" yaml:"endpoint"`                 // For S3-compatible services like MinIO, Wasabi
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" yaml:"force_path_style"` // Required for MinIO and some S3-compatible services
	// Prefix is the key prefix the asset tree lives under, e.g. "site/public".
	Prefix string `env:"S3_PREFIX" yaml:"prefix"`
}

// Option configures FS.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3aws.Options)
	requestTimeout  time.Duration
}

// WithS3Client sets a custom pre-configured S3 client.
// Primarily used for testing with mocks, but also allows advanced client customization.
func WithS3Client(client S3Client) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithRequestTimeout bounds each S3 call. Zero relies on the caller's
// context deadline.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.requestTimeout = timeout
	}
}

// FS exposes keys under a bucket prefix as a read-only directory tree.
// Directories are implied by "/" in keys. Safe for concurrent use.
type FS struct {
	client  S3Client
	bucket  string
	prefix  string // "" or ends with "/"
	timeout time.Duration
}

// New creates an S3-backed file system.
func New(ctx context.Context, cfg Config, opts ...Option) (*FS, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}

		// Static credentials when provided, IAM roles or env vars otherwise.
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsOptions = append(awsOptions, o.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &FS{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  prefix,
		timeout: o.requestTimeout,
	}, nil
}

// Root is the virtual root every name is resolved against.
func (f *FS) Root() string { return "/" }

// key maps an absolute name onto an object key. The empty key is the tree root.
func (f *FS) key(name string) string {
	rel := strings.Trim(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if rel == "" {
		return strings.TrimSuffix(f.prefix, "/")
	}
	return f.prefix + rel
}

func (f *FS) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(ctx, f.timeout)
	}
	return ctx, func() {}
}

// Stat reports an object as a regular file and a key prefix with at least
// one object below it as a directory. The tree root is a directory as long
// as the bucket is reachable.
func (f *FS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	key := f.key(name)
	base := path.Base("/" + key)

	if key == strings.TrimSuffix(f.prefix, "/") {
		if _, err := f.list(ctx, f.prefix, 1); err != nil {
			return nil, err
		}
		return dirInfo(base), nil
	}

	head, err := f.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return fileInfo{
			name:    base,
			size:    aws.ToInt64(head.ContentLength),
			modTime: aws.ToTime(head.LastModified),
		}, nil
	}

	err = classifyS3Error(err, "stat", key)
	if !isNotExist(err) {
		return nil, err
	}

	out, err := f.list(ctx, key+"/", 1)
	if err != nil {
		return nil, err
	}
	if aws.ToInt32(out.KeyCount) > 0 || len(out.Contents) > 0 || len(out.CommonPrefixes) > 0 {
		return dirInfo(base), nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile downloads the whole object.
func (f *FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	key := f.key(name)
	out, err := f.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "read", key)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, classifyS3Error(err, "read", key)
	}
	return body, nil
}

// ReadDir lists the immediate children of name using the "/" delimiter,
// following continuation tokens until the listing is complete.
func (f *FS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	prefix := f.key(name)
	if prefix != "" {
		prefix += "/"
	}

	p := s3aws.NewListObjectsV2Paginator(f.client, &s3aws.ListObjectsV2Input{
		Bucket:    aws.String(f.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []fs.DirEntry
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classifyS3Error(err, "list", prefix)
		}

		for _, cp := range page.CommonPrefixes {
			dir := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if dir != "" {
				entries = append(entries, fs.FileInfoToDirEntry(dirInfo(dir)))
			}
		}

		for _, obj := range page.Contents {
			file := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			// Skip the directory marker itself and anything deeper.
			if file == "" || strings.Contains(file, "/") {
				continue
			}
			entries = append(entries, fs.FileInfoToDirEntry(fileInfo{
				name:    file,
				size:    aws.ToInt64(obj.Size),
				modTime: aws.ToTime(obj.LastModified),
			}))
		}
	}

	return entries, nil
}

func (f *FS) list(ctx context.Context, prefix string, limit int32) (*s3aws.ListObjectsV2Output, error) {
	out, err := f.client.ListObjectsV2(ctx, &s3aws.ListObjectsV2Input{
		Bucket:  aws.String(f.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(limit),
	})
	if err != nil {
		return nil, classifyS3Error(err, "list", prefix)
	}
	return out, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
