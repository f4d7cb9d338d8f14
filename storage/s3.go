package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	fs "github.com/dreitier/testermon/storage/fs"
	dotstat "github.com/dreitier/testermon/storage/fs/dotstat"
	log "github.com/sirupsen/logrus"
)

// S3Client keeps the files of each tester below <Prefix>/<tester>/ in Bucket
type S3Client struct {
	Bucket         string
	Prefix         string
	AccessKey      string
	SecretKey      string
	Token          string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	s3Client       *s3.Client
}

func getClient(ctx context.Context, c *S3Client) (*s3.Client, error) {
	if c.s3Client != nil {
		return c.s3Client, nil
	}

	region := c.Region
	if len(region) == 0 {
		region = "eu-central-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	// without static credentials the default chain (environment, shared config, instance role) applies
	if len(c.AccessKey) > 0 {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, c.Token)))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build S3 client: %s", err)
	}

	c.s3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = c.ForcePathStyle

		if len(c.Endpoint) > 0 {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})

	return c.s3Client, nil
}

func (c *S3Client) Store(ctx context.Context, tester string, file *fs.FileInfo, content []byte) error {
	svc, err := getClient(ctx, c)
	if err != nil {
		return fmt.Errorf("could not acquire S3 client instance: %s", err)
	}

	key := c.keyOf(tester, file.Name)

	_, err = svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %s", key, c.Bucket, err)
	}

	stat, err := dotstat.Marshal(file)
	if err != nil {
		return err
	}

	_, err = svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(dotstat.ToDotStatPath(key)),
		Body:   bytes.NewReader(stat),
	})
	if err != nil {
		return fmt.Errorf("failed to upload stat file of %s to bucket %s: %s", key, c.Bucket, err)
	}

	log.Debugf("Archived %s of tester %s at s3://%s/%s", file.Name, tester, c.Bucket, key)

	return nil
}

func (c *S3Client) GetFileNames(ctx context.Context, tester string) ([]*fs.FileInfo, error) {
	svc, err := getClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not acquire S3 client instance: %s", err)
	}

	prefix := c.keyOf(tester, "")
	paginator := s3.NewListObjectsV2Paginator(svc, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.Bucket),
		Prefix: aws.String(prefix),
	})

	var files []*fs.FileInfo
	var statKeys []string

	// if the bucket holds more than MaxKeys items, fetch them until we got them all
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get objects in bucket %#q: %s", c.Bucket, err)
		}

		log.Debugf("Retrieved %d items from bucket %#q", len(page.Contents), c.Bucket)

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)

			// objects in deeper levels have not been archived by us
			if name == "" || strings.Contains(name, "/") {
				continue
			}

			if dotstat.IsStatFile(name) {
				statKeys = append(statKeys, aws.ToString(obj.Key))
				continue
			}

			files = append(files, &fs.FileInfo{
				Name:       name,
				Size:       aws.ToInt64(obj.Size),
				ArchivedAt: aws.ToTime(obj.LastModified),
			})
		}
	}

	dotStatContents := make(map[string][]byte, len(statKeys))

	for _, key := range statKeys {
		buf, err := c.get(ctx, svc, key)
		if err != nil {
			log.Warnf("Unable to read stat file %s: %s", key, err)
			continue
		}

		dotStatContents[dotstat.RemoveDotStatSuffix(path.Base(key))] = buf
	}

	dotstat.ApplyDotStatValues(dotStatContents, files)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (c *S3Client) Download(ctx context.Context, tester string, fileName string) (io.ReadCloser, error) {
	if dotstat.IsStatFile(fileName) || strings.Contains(fileName, "/") {
		return nil, ErrFileNotFound
	}

	svc, err := getClient(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("could not acquire S3 client instance: %s", err)
	}

	key := c.keyOf(tester, fileName)

	out, err := svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError(err, key, c.Bucket)
	}

	return out.Body, nil
}

func (c *S3Client) get(ctx context.Context, svc *s3.Client, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError(err, key, c.Bucket)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// keyOf returns <prefix>/<tester>/<fileName>; an empty fileName yields the tester's prefix with trailing slash
func (c *S3Client) keyOf(tester string, fileName string) string {
	parts := make([]string, 0, 3)

	if prefix := strings.Trim(c.Prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}

	parts = append(parts, tester, fileName)

	return strings.Join(parts, "/")
}

// translateError maps missing objects to ErrFileNotFound
func translateError(err error, key string, bucket string) error {
	var apiErr smithy.APIError

	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrFileNotFound
		}
	}

	return fmt.Errorf("failed to download object %s from bucket %s: %w", key, bucket, err)
}
