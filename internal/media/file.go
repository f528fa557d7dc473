// Package media loads picture files picked by the user and identifies their
// content type from the bytes rather than the file extension.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// maxBuffered bounds how much of a picked file is read into memory. Files
// larger than this are only sniffed; the upload policy rejects them on size
// long before any bytes would be sent.
const maxBuffered = 16 << 20

// sniffLen is the header length mimetype needs to identify images.
const sniffLen = 3072

// File is a picture selected for upload.
type File struct {
	Name string
	MIME string
	Size int64
	Data []byte
}

// Open reads the file at path and detects its MIME type.
func Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("opening picture: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("reading picture info: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	file := File{
		Name: filepath.Base(path),
		Size: info.Size(),
	}

	if info.Size() > maxBuffered {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(f, head)
		if err != nil && err != io.ErrUnexpectedEOF {
			return File{}, fmt.Errorf("reading picture header: %w", err)
		}
		file.MIME = Detect(head[:n])
		return file, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return File{}, fmt.Errorf("reading picture: %w", err)
	}
	file.Data = data
	file.Size = int64(len(data))
	file.MIME = Detect(data)

	return file, nil
}

// FromBytes wraps in-memory picture data.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		MIME: Detect(data),
		Size: int64(len(data)),
		Data: data,
	}
}

// Detect returns the bare MIME type of data, without parameters.
func Detect(data []byte) string {
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(mt)
}
