package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskPutAndDelete(t *testing.T) {
	root := t.TempDir()
	d, err := NewDisk(root, "/uploads/")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	ctx := context.Background()

	if err := d.Put(ctx, "2026/01/a.png", "image/png", []byte("png")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "2026", "01", "a.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("content = %q, want %q", got, "png")
	}

	if u := d.URL("2026/01/a.png"); u != "/uploads/2026/01/a.png" {
		t.Errorf("URL = %q", u)
	}

	if err := d.Delete(ctx, "2026/01/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Delete(ctx, "2026/01/a.png"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestDiskRejectsTraversal(t *testing.T) {
	d, err := NewDisk(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	for _, key := range []string{"../escape.png", "a/../../b", ""} {
		err := d.Put(context.Background(), key, "image/png", []byte("x"))
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestNewS3Unconfigured(t *testing.T) {
	c, err := NewS3("", "us-east-1", "", "", "", "")
	if err != nil || c != nil {
		t.Errorf("NewS3 without config = (%v, %v), want (nil, nil)", c, err)
	}
}

func TestS3URLs(t *testing.T) {
	c, err := NewS3("https://s3.example.com/", "us-east-1", "ak", "sk", "kartela", "")
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	u := c.URL("uploads/a.png")
	if u != "https://s3.example.com/kartela/uploads/a.png" {
		t.Errorf("URL = %q", u)
	}
	if key, ok := c.KeyFromURL(u); !ok || key != "uploads/a.png" {
		t.Errorf("KeyFromURL = (%q, %v)", key, ok)
	}

	cdn, _ := NewS3("https://s3.example.com", "us-east-1", "ak", "sk", "kartela", "https://cdn.example.com/")
	if u := cdn.URL("x.png"); u != "https://cdn.example.com/x.png" {
		t.Errorf("CDN URL = %q", u)
	}
	if _, ok := cdn.KeyFromURL("https://elsewhere.example.com/x.png"); ok {
		t.Error("foreign URL must not match")
	}
}
