// Package storage persists uploaded listing images on the local disk and
// hands back stable URL paths for them.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxImageBytes caps uploaded listing images.
const MaxImageBytes = 10 << 20 // 10 MiB

var (
	ErrImageTooLarge   = errors.New("image exceeds the size limit")
	ErrUnsupportedType = errors.New("only jpeg and png images are accepted")
)

// Local writes uploads under a single directory served as /uploads.
type Local struct {
	dir string
}

// NewLocal ensures the upload directory exists and returns the store.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the directory uploads are written to, for static serving.
func (l *Local) Dir() string { return l.dir }

// SaveImage validates and stores one uploaded image, returning its URL path
// ("/uploads/<name>"). Names are timestamp plus random suffix so concurrent
// uploads never collide and existing files are never overwritten.
func (l *Local) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	ext, err := imageExt(fh)
	if err != nil {
		return "", err
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), hex.EncodeToString(suffix), ext)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer dst.Close()

	// LimitReader as a second line of defense against a lying Size header.
	if _, err := io.Copy(dst, io.LimitReader(src, MaxImageBytes+1)); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	if info, err := dst.Stat(); err == nil && info.Size() > MaxImageBytes {
		_ = os.Remove(dst.Name())
		return "", ErrImageTooLarge
	}
	return "/uploads/" + name, nil
}

func imageExt(fh *multipart.FileHeader) (string, error) {
	switch strings.ToLower(fh.Header.Get("Content-Type")) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	}
	// Fall back to the filename when the part has no usable content type.
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg":
		return ".jpg", nil
	case ".png":
		return ".png", nil
	}
	return "", ErrUnsupportedType
}
