package blob

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	PutErr    error
	DeleteErr error

	LastPutBucket    string
	LastPutKey       string
	LastPutBody      []byte
	LastDeleteBucket string
	LastDeleteKey    string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.LastPutBucket = *in.Bucket
	f.LastPutKey = *in.Key
	if in.Body != nil {
		f.LastPutBody, _ = io.ReadAll(in.Body)
	}
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.LastDeleteBucket = *in.Bucket
	f.LastDeleteKey = *in.Key
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, endpoint: "http://127.0.0.1:9000/"}

	err := store.Upload(context.Background(), "avatars", "u1-1.png", []byte("img"))
	require.NoError(t, err)
	require.Equal(t, "avatars", fake.LastPutBucket)
	require.Equal(t, "u1-1.png", fake.LastPutKey)
	require.Equal(t, []byte("img"), fake.LastPutBody)
}

func TestUploadError(t *testing.T) {
	fake := &fakeS3{PutErr: errors.New("boom")}
	store := &S3Store{client: fake, endpoint: "http://127.0.0.1:9000/"}

	err := store.Upload(context.Background(), "avatars", "k", nil)
	require.ErrorContains(t, err, "upload error")
}

func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, endpoint: "http://127.0.0.1:9000/"}

	err := store.Delete(context.Background(), "skill-images", "old.png")
	require.NoError(t, err)
	require.Equal(t, "skill-images", fake.LastDeleteBucket)
	require.Equal(t, "old.png", fake.LastDeleteKey)
}

func TestPublicURL(t *testing.T) {
	store := &S3Store{endpoint: "http://127.0.0.1:9000/"}
	require.Equal(t, "http://127.0.0.1:9000/avatars/u1-1.png", store.PublicURL("avatars", "u1-1.png"))

	store = &S3Store{endpoint: "http://127.0.0.1:9000"}
	require.Equal(t, "http://127.0.0.1:9000/avatars/u1-1.png", store.PublicURL("avatars", "u1-1.png"))
}
