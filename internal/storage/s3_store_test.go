package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 records puts and serves gets from an in-memory map.
type fakeS3 struct {
	objects map[string][]byte
	lastCT  string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[*in.Key] = data
	if in.ContentType != nil {
		f.lastCT = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Store_RoundTripAndKeyLayout(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "b", prefix: "claims"}

	if err := store.Put(context.Background(), "d1", "application/pdf", []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := fake.objects["claims/documents/d1"]; !ok {
		t.Fatalf("unexpected key layout: %v", fake.objects)
	}
	if fake.lastCT != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", fake.lastCT)
	}

	got, err := store.Get(context.Background(), "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q", got)
	}
}

func TestS3Store_DefaultContentType(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "b"}
	if err := store.Put(context.Background(), "d1", "", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fake.lastCT != "application/octet-stream" {
		t.Fatalf("content type = %q", fake.lastCT)
	}
}

func TestS3Store_MissingKey(t *testing.T) {
	store := &S3Store{client: &fakeS3{}, bucket: "b"}
	if _, err := store.Get(context.Background(), "ghost"); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}
