package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Getter streams objects from s3:// record URLs, for lockfiles that
// point at mirrors hosted in private buckets.
type S3Getter struct {
	Profile string

	once    sync.Once
	client  *s3.Client
	initErr error
}

func (g *S3Getter) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	g.once.Do(func() {
		profile := g.Profile
		if profile == "" {
			profile = "default"
		}
		cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
		if err != nil {
			g.initErr = fmt.Errorf("error loading AWS config: %v", err)
			return
		}
		g.client = s3.NewFromConfig(cfg)
	})
	if g.initErr != nil {
		return nil, g.initErr
	}
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	result, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting object s3://%s/%s: %v", bucket, key, err)
	}
	return result.Body, nil
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format: %q", url)
	}
	return parts[0], parts[1], nil
}
