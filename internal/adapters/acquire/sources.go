package acquire

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/studio-b12/gowebdav"

	"forensdesk/internal/ports"
)

// SplitRef separates a reference into its scheme and location. A bare
// path has the "file" scheme.
func SplitRef(ref string) (scheme, location string) {
	if i := strings.Index(ref, "://"); i > 0 {
		return ref[:i], ref[i+3:]
	}
	return "file", ref
}

// LocalSource reads images already present on this host
type LocalSource struct{}

var _ ports.EvidenceSource = LocalSource{}

func (LocalSource) Scheme() string { return "file" }

func (LocalSource) Fetch(_ context.Context, ref string) (io.ReadCloser, string, error) {
	_, p := SplitRef(ref)
	if !filepath.IsAbs(p) {
		return nil, "", fmt.Errorf("local evidence path must be absolute: %s", p)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, "", err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, "", err
	}
	if info.IsDir() {
		f.Close()
		return nil, "", fmt.Errorf("%s is a directory", p)
	}
	return f, filepath.Base(p), nil
}

// WebDAVConfig holds the share images are collected from
type WebDAVConfig struct {
	BaseURL  string
	Username string
	Password string
}

type streamReader interface {
	ReadStream(path string) (io.ReadCloser, error)
}

// WebDAVSource fetches webdav://path/to/image references from one share
type WebDAVSource struct {
	client streamReader
}

var _ ports.EvidenceSource = (*WebDAVSource)(nil)

// NewWebDAVSource creates a source for the share at cfg.BaseURL
func NewWebDAVSource(cfg WebDAVConfig) *WebDAVSource {
	return &WebDAVSource{
		client: gowebdav.NewClient(cfg.BaseURL, cfg.Username, cfg.Password),
	}
}

func (s *WebDAVSource) Scheme() string { return "webdav" }

func (s *WebDAVSource) Fetch(_ context.Context, ref string) (io.ReadCloser, string, error) {
	_, p := SplitRef(ref)
	p = gowebdav.Join("/", p)
	if p == "/" {
		return nil, "", fmt.Errorf("webdav reference has no path: %s", ref)
	}
	body, err := s.client.ReadStream(p)
	if err != nil {
		return nil, "", fmt.Errorf("webdav read %s: %w", p, err)
	}
	return body, path.Base(p), nil
}

// S3Config holds S3 connection settings. An empty Endpoint uses AWS.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches s3://bucket/key references
type S3Source struct {
	client objectGetter
}

var _ ports.EvidenceSource = (*S3Source)(nil)

// NewS3Source creates an S3 source. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &S3Source{client: client}, nil
}

func (s *S3Source) Scheme() string { return "s3" }

func (s *S3Source) Fetch(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	_, loc := SplitRef(ref)
	bucket, key, ok := strings.Cut(loc, "/")
	if !ok || bucket == "" || key == "" {
		return nil, "", fmt.Errorf("s3 reference must be s3://bucket/key: %s", ref)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, path.Base(key), nil
}
