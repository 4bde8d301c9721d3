package avatar

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutDelete(t *testing.T) {
	objects := newFakeObjects()
	store := newS3Store(objects, "blog", "profile_pics")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc.png", []byte("png"), "image/png"))
	assert.Equal(t, []byte("png"), objects.objects["blog/profile_pics/abc.png"])
	assert.Equal(t, "image/png", objects.types["blog/profile_pics/abc.png"])

	require.NoError(t, store.Delete(ctx, "abc.png"))
	assert.Empty(t, objects.objects)

	assert.ErrorIs(t, store.Put(ctx, "a/b.png", nil, "image/png"), ErrInvalidName)
}

func TestS3Store_PutError(t *testing.T) {
	objects := newFakeObjects()
	objects.putErr = errors.New("access denied")
	store := newS3Store(objects, "blog", "profile_pics")

	err := store.Put(context.Background(), "abc.png", []byte("png"), "image/png")
	assert.ErrorContains(t, err, "access denied")
}
