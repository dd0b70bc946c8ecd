// Package storage keeps uploaded file bytes on local disk.
package storage

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotExist is returned by Open when the stored bytes are gone.
var ErrNotExist = errors.New("stored file does not exist")

// Blob describes bytes written by Save.
type Blob struct {
	Name     string
	Path     string
	Size     int64
	MimeType string
}

// Disk stores blobs as flat files under Root.
type Disk struct {
	Root string
	now  func() time.Time
}

// NewDisk creates the root directory if needed and returns a Disk.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", root, err)
	}
	return &Disk{Root: root, now: time.Now}, nil
}

// Save writes r under a generated name "<unix-ms>-<random><ext>", keeping the
// extension of originalName. The MIME type is sniffed from the content.
func (d *Disk) Save(r io.Reader, originalName string) (*Blob, error) {
	name, err := d.storedName(originalName)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(d.Root, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	header = header[:n]

	size, err := io.Copy(f, io.MultiReader(bytes.NewReader(header), r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &Blob{
		Name:     name,
		Path:     path,
		Size:     size,
		MimeType: mimetype.Detect(header).String(),
	}, nil
}

// Open returns the blob at path for reading.
func (d *Disk) Open(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotExist
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Remove deletes the blob at path. Missing files are not an error.
func (d *Disk) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Disk) storedName(originalName string) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return fmt.Sprintf("%d-%s%s", d.now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}
