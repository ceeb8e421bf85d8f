package acquire

import (
	"bytes"
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digest(data []byte) string {
	return fmt.Sprintf("%x", sha512.Sum512(data))
}

func TestSplitRef(t *testing.T) {
	tests := []struct {
		ref, scheme, location string
	}{
		{"/cases/42/disk.raw", "file", "/cases/42/disk.raw"},
		{"file:///cases/disk.raw", "file", "/cases/disk.raw"},
		{"s3://evidence/case42/disk.E01", "s3", "evidence/case42/disk.E01"},
		{"webdav://intake/phone.dd", "webdav", "intake/phone.dd"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			scheme, loc := SplitRef(tt.ref)
			assert.Equal(t, tt.scheme, scheme)
			assert.Equal(t, tt.location, loc)
		})
	}
}

func TestAcquireLocal(t *testing.T) {
	src := t.TempDir()
	data := append([]byte{0xff, 0xd8, 0xff, 0xe0}, bytes.Repeat([]byte("image"), 20000)...)
	srcPath := filepath.Join(src, "disk.raw")
	require.NoError(t, os.WriteFile(srcPath, data, 0644))

	dir := t.TempDir()
	a := New(dir, nil, LocalSource{})

	acq, err := a.Acquire(context.Background(), srcPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "disk.raw"), acq.Path)
	assert.Equal(t, srcPath, acq.Source)
	assert.Equal(t, int64(len(data)), acq.Size)
	assert.Equal(t, digest(data), acq.SHA512)
	assert.Equal(t, "image/jpeg", acq.ContentType)

	stored, err := os.ReadFile(acq.Path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestAcquireKeepsEarlierCopies(t *testing.T) {
	src := filepath.Join(t.TempDir(), "disk.dd")
	require.NoError(t, os.WriteFile(src, []byte("first"), 0644))

	dir := t.TempDir()
	a := New(dir, nil, LocalSource{})

	first, err := a.Acquire(context.Background(), "file://"+src)
	require.NoError(t, err)
	second, err := a.Acquire(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "disk.dd"), first.Path)
	assert.Equal(t, filepath.Join(dir, "disk-1.dd"), second.Path)
	assert.Equal(t, first.SHA512, second.SHA512)
}

func TestAcquireRejects(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))
	a := New(t.TempDir(), nil, LocalSource{})
	ctx := context.Background()

	_, err := a.Acquire(ctx, src)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = a.Acquire(ctx, "ftp://host/disk.raw")
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = a.Acquire(ctx, "relative/disk.raw")
	assert.Error(t, err)

	_, err = a.Acquire(ctx, filepath.Join(t.TempDir(), "missing.raw"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStoreUpload(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, nil)
	data := []byte("%PDF-1.4 not really an image")

	acq, err := a.Store(context.Background(), "../../etc/Case 42.E01", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Case_42.E01"), acq.Path)
	assert.Equal(t, "upload", acq.Source)
	assert.Equal(t, digest(data), acq.SHA512)
	assert.Equal(t, "application/pdf", acq.ContentType)

	_, err = a.Store(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("connection reset")
	}
	n := min(len(p), r.after)
	for i := range n {
		p[i] = 'x'
	}
	r.after -= n
	return n, nil
}

func TestStoreRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, nil)

	_, err := a.Store(context.Background(), "disk.raw", &failingReader{after: 100000})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir(), nil).Store(ctx, "disk.raw", strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWebDAVSource(t *testing.T) {
	data := []byte("EVF\x09\x0d\x0a\xff\x00 segment")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/intake/phone.E01" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := New(dir, nil, NewWebDAVSource(WebDAVConfig{BaseURL: srv.URL}))

	acq, err := a.Acquire(context.Background(), "webdav://intake/phone.E01")
	require.NoError(t, err)
	assert.Equal(t, digest(data), acq.SHA512)
	assert.Equal(t, filepath.Join(dir, "phone.E01"), acq.Path)

	_, err = a.Acquire(context.Background(), "webdav://intake/missing.E01")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Source(t *testing.T) {
	data := bytes.Repeat([]byte{0x00, 0x01}, 4096)
	source := &S3Source{client: &fakeS3{objects: map[string][]byte{"evidence/case42/disk.img": data}}}
	a := New(t.TempDir(), nil, source)
	ctx := context.Background()

	acq, err := a.Acquire(ctx, "s3://evidence/case42/disk.img")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), acq.Size)
	assert.Equal(t, digest(data), acq.SHA512)
	assert.Equal(t, "s3://evidence/case42/disk.img", acq.Source)

	_, err = a.Acquire(ctx, "s3://evidence")
	assert.Error(t, err)

	_, err = a.Acquire(ctx, "s3://evidence/case42/other.img")
	assert.Error(t, err)
}

func TestSplitReaderSurvivesEarlyClose(t *testing.T) {
	data := bytes.Repeat([]byte("abcdef"), 50000)
	readers := splitReader(context.Background(), bytes.NewReader(data), 2)

	done := make(chan []byte)
	go func() {
		got, _ := io.ReadAll(readers[0])
		done <- got
	}()

	head := make([]byte, 10)
	_, err := io.ReadFull(readers[1], head)
	require.NoError(t, err)
	readers[1].Close()

	assert.Equal(t, data, <-done)
}
