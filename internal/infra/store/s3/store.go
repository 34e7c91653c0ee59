// Package s3 implements core.Store on an S3-compatible bucket, one JSON
// object per item.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

const objectSuffix = ".json"

// Store implements core.Store using an S3-compatible backend (AWS S3 or MinIO).
// Keys map to <prefix><productid>.json.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds explicit construction parameters.
type Config struct {
	Region    string
	Bucket    string
	Prefix    string // optional key prefix, e.g. "products/"
	Endpoint  string // optional; if set enables custom endpoint (e.g. MinIO)
	PathStyle bool
}

// New creates an S3 item store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverS3 }

func (s *Store) objectKey(id string) string { return s.prefix + id + objectSuffix }

func (s *Store) Get(ctx context.Context, id string) (item.Item, bool, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, false, err
	}
	return s.read(ctx, s.objectKey(id))
}

func (s *Store) read(ctx context.Context, key string) (item.Item, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = out.Body.Close() }()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	var it item.Item
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return it, true, nil
}

func (s *Store) write(ctx context.Context, id string, it item.Item) error {
	body, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	key := s.objectKey(id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (s *Store) Put(ctx context.Context, it item.Item) error {
	id, _ := it.ID()
	if err := core.CheckKey(id); err != nil {
		return err
	}
	return s.write(ctx, id, it)
}

// Update is a read-modify-write; concurrent updates of one key are not coordinated.
func (s *Store) Update(ctx context.Context, id, field string, value item.Value) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	it, ok, err := s.read(ctx, s.objectKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		it = item.Item{item.KeyAttribute: id}
	}
	it[field] = value.Interface()
	if err := s.write(ctx, id, it); err != nil {
		return nil, err
	}
	return item.Item{field: value.Interface()}, nil
}

func (s *Store) Delete(ctx context.Context, id string) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	key := s.objectKey(id)
	prev, ok, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return nil, err
	}
	return prev, nil
}

func (s *Store) Scan(ctx context.Context) ([]item.Item, error) {
	items := make([]item.Item, 0)
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &s.prefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, objectSuffix) {
				continue
			}
			it, ok, err := s.read(ctx, key)
			if err != nil {
				return nil, err
			}
			if ok {
				items = append(items, it)
			}
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	return items, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
