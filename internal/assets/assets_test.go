package assets

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	puts []*s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func testStore() (*Store, *fakeS3) {
	f := &fakeS3{}
	return &Store{s3Client: f, bucket: "prizejet-assets", region: "us-east-1"}, f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadSmallImageKeptAsIs(t *testing.T) {
	store, s3c := testStore()

	url, err := store.UploadFeaturedImage(context.Background(), "c-1", bytes.NewReader(pngBytes(t, 800, 400)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(s3c.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(s3c.puts))
	}
	put := s3c.puts[0]
	if *put.ContentType != "image/png" {
		t.Fatalf("content type = %s", *put.ContentType)
	}
	if !strings.HasPrefix(*put.Key, "campaigns/c-1/") || !strings.HasSuffix(*put.Key, ".png") {
		t.Fatalf("unexpected key %s", *put.Key)
	}
	if !strings.HasPrefix(url, "https://prizejet-assets.s3.us-east-1.amazonaws.com/campaigns/c-1/") {
		t.Fatalf("unexpected url %s", url)
	}
}

func TestUploadResizesWideImage(t *testing.T) {
	store, s3c := testStore()

	if _, err := store.UploadFeaturedImage(context.Background(), "c-1", bytes.NewReader(pngBytes(t, 2400, 1200))); err != nil {
		t.Fatalf("upload: %v", err)
	}

	stored, err := io.ReadAll(s3c.puts[0].Body)
	if err != nil {
		t.Fatalf("read stored body: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("decode stored image: %v", err)
	}
	if cfg.Width != HeroWidth || cfg.Height != 600 {
		t.Fatalf("expected 1200x600, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	store, s3c := testStore()

	_, err := store.UploadFeaturedImage(context.Background(), "c-1", strings.NewReader("%PDF-1.4 not an image"))
	if err == nil || !strings.Contains(err.Error(), "unsupported image type") {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
	if len(s3c.puts) != 0 {
		t.Fatal("nothing should reach S3")
	}
}

func TestUploadRejectsOversized(t *testing.T) {
	store, _ := testStore()

	// Valid JPEG magic bytes followed by junk past the size cap.
	big := append([]byte{0xFF, 0xD8}, bytes.Repeat([]byte{0}, MaxFileSizeMB*1024*1024)...)
	_, err := store.UploadFeaturedImage(context.Background(), "c-1", bytes.NewReader(big))
	if err == nil || !strings.Contains(err.Error(), "file size exceeds") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestCDNDomainPreferred(t *testing.T) {
	store, _ := testStore()
	store.cdnDomain = "img.prizejet.example"

	url, err := store.UploadFeaturedImage(context.Background(), "c-1", bytes.NewReader(pngBytes(t, 10, 10)))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://img.prizejet.example/campaigns/c-1/") {
		t.Fatalf("unexpected url %s", url)
	}
}
