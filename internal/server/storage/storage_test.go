package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageKey(t *testing.T) {
	k1 := NewStorageKey(7, 42, ".png")
	k2 := NewStorageKey(7, 42, "png")
	assert.Regexp(t, regexp.MustCompile(`^products/7/42/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.png$`), k1)
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, NewStorageKey(1, 1, ""), ".")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.URL(ctx, "nope")
	assert.Error(t, err)

	require.NoError(t, m.Put(ctx, "k", "image/png", []byte("data")))
	u, err := m.URL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "memory://k", u)
	b, ok := m.Object("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("data"), b)
}

// stubAWS replaces the SDK seams for the duration of the test.
func stubAWS(t *testing.T, loadErr error) *s3.Options {
	t.Helper()
	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
		putObject, presignGetObject = origPut, origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, loadErr
	}
	captured := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(captured)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	return captured
}

func newTestStore() *S3Store {
	return NewS3Store(S3Options{
		Region: "us-east-1", AccessKey: "minioadmin", SecretKey: "minioadmin",
		Bucket: "products", BaseEndpoint: "http://127.0.0.1:9000",
	})
}

func TestS3Store_PutAndURL(t *testing.T) {
	opts := stubAWS(t, nil)

	var putKey, putBucket, putType string
	var putBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		putKey, putBucket, putType = *in.Key, *in.Bucket, *in.ContentType
		putBody, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, PresignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "http://127.0.0.1:9000/" + *in.Bucket + "/" + *in.Key + "?sig"}, nil
	}

	s := newTestStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "products/1/a.png", "image/png", []byte("png")))
	assert.Equal(t, "products/1/a.png", putKey)
	assert.Equal(t, "products", putBucket)
	assert.Equal(t, "image/png", putType)
	assert.Equal(t, []byte("png"), putBody)

	u, err := s.URL(ctx, "products/1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/products/products/1/a.png?sig", u)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestS3Store_ConfigErrorIsSticky(t *testing.T) {
	stubAWS(t, errors.New("no creds"))

	s := newTestStore()
	assert.EqualError(t, s.Put(context.Background(), "k", "image/png", nil), "no creds")
	_, err := s.URL(context.Background(), "k")
	assert.EqualError(t, err, "no creds")
}

func TestS3Store_PropagatesSDKErrors(t *testing.T) {
	stubAWS(t, nil)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put failed")
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}

	s := newTestStore()
	assert.EqualError(t, s.Put(context.Background(), "k", "image/png", nil), "put failed")
	_, err := s.URL(context.Background(), "k")
	assert.EqualError(t, err, "presign failed")
}
