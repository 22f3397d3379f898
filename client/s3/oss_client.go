package s3

import (
	"context"
	"io"
	"primor/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

var (
	// AvatarBucket is nil when object storage is not configured.
	AvatarBucket *oss.Bucket

	GetObjectFunc    = GetObject
	PutObjectFunc    = PutObject
	DeleteObjectFunc = DeleteObject
)

func Enabled() bool {
	return AvatarBucket != nil
}

// Bootstrap leaves storage disabled when the configuration is incomplete.
func Bootstrap(c config.OSSConfig) error {
	if !c.Enabled() {
		return nil
	}
	bucket, err := BuildBucket(c.Endpoint, c.AccessKey, c.SecretKey, c.Bucket)
	if err != nil {
		return err
	}
	AvatarBucket = bucket
	return nil
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accesskey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}
	return cli.Bucket(bucketName)
}

func startSpan(ctx context.Context, operation, key string) opentracing.Span {
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", key)
	return sp
}

func finishSpan(sp opentracing.Span, err error) {
	if sp == nil {
		return
	}
	ext.Error.Set(sp, err != nil)
	sp.Finish()
}

func GetObject(ctx context.Context, key string, opts ...oss.Option) (io.ReadCloser, error) {
	sp := startSpan(ctx, "get-object", key)
	r, err := AvatarBucket.GetObject(key, opts...)
	finishSpan(sp, err)
	return r, err
}

func PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	sp := startSpan(ctx, "put-object", key)
	err := AvatarBucket.PutObject(key, r, opts...)
	finishSpan(sp, err)
	return err
}

// DeleteObject succeeds for missing keys, as OSS does.
func DeleteObject(ctx context.Context, key string) error {
	sp := startSpan(ctx, "delete-object", key)
	err := AvatarBucket.DeleteObject(key)
	finishSpan(sp, err)
	return err
}
