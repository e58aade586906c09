package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type stubPutter struct {
	err  error
	keys []string
}

func (s *stubPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.keys = append(s.keys, *params.Key)
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{}, nil
}

func writeTempAsset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))
	return path
}

func TestS3Uploader_Upload_RemovesLocalFileOnSuccess(t *testing.T) {
	putter := &stubPutter{}
	u := &S3Uploader{client: putter, bucket: "media", publicBase: "http://cdn"}

	path := writeTempAsset(t)
	url, err := u.Upload(context.Background(), path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn/media/assets/"))
	require.True(t, strings.HasSuffix(url, ".png"))

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestS3Uploader_Upload_RemovesLocalFileOnFailure(t *testing.T) {
	putter := &stubPutter{err: errors.New("put failed")}
	u := &S3Uploader{client: putter, bucket: "media", publicBase: "http://cdn"}

	path := writeTempAsset(t)
	_, err := u.Upload(context.Background(), path)
	require.Error(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestS3Uploader_Upload_MissingFile(t *testing.T) {
	u := &S3Uploader{client: &stubPutter{}, bucket: "media", publicBase: "http://cdn"}

	_, err := u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}
