// Package s3 serves a static asset tree straight from an Amazon S3 or
// S3-compatible bucket (MinIO, DigitalOcean Spaces, Wasabi).
//
// FS implements static.FileSystem over three calls: HeadObject for Stat,
// GetObject for ReadFile and a delimited ListObjectsV2 for ReadDir. Keys
// under Config.Prefix become the tree; "/" in keys implies directories.
//
//	fsys, err := s3.New(ctx, s3.Config{
//		Bucket: "my-site",
//		Region: "us-east-1",
//		Prefix: "public",
//	}, s3.WithRequestTimeout(5*time.Second))
//	if err != nil {
//		return err
//	}
//
//	plugin, err := static.New[*router.Context](ctx, r,
//		static.WithFileSystem(fsys),
//		static.WithPrefix("/public"),
//	)
//
// For MinIO and similar services set Endpoint and ForcePathStyle:
//
//	cfg := s3.Config{
//		Bucket:         "assets",
//		Region:         "us-east-1",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//	}
//
// Without static credentials the default AWS chain applies (environment,
// shared config, IAM role).
//
// Missing keys surface as fs.ErrNotExist and denied access as
// fs.ErrPermission, so the static plugin treats them like a local directory.
// Throttling maps to ErrServiceUnavailable and a missing bucket to
// ErrBucketNotFound.
package s3
