package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned when an archive contains no files.
var ErrEmptyArchive = errors.New("utils: archive is empty")

// LoadFile loads the given file and performs decompression if necessary.
// The compression is asserted from the file extension; archives yield
// their first file.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Decompress(strings.ToLower(filepath.Ext(filename)), data)
}

// Decompress decodes data according to ext (".gz", ".xz", ".zip" or
// ".7z"). Any other extension returns the data as is.
func Decompress(ext string, data []byte) ([]byte, error) {
	var decoder io.Reader
	var err error
	switch ext {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".xz":
		decoder, err = xz.NewReader(bytes.NewReader(data))
	case ".zip":
		var zipReader *zip.Reader
		zipReader, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			break
		}
		if len(zipReader.File) == 0 {
			return nil, ErrEmptyArchive
		}

		// read the first file in the zip file
		var rc io.ReadCloser
		rc, err = zipReader.File[0].Open()
		if err != nil {
			break
		}
		defer rc.Close()
		decoder = rc
	case ".7z":
		var r *sevenzip.Reader
		r, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			break
		}
		if len(r.File) == 0 {
			return nil, ErrEmptyArchive
		}

		// read the first file in the archive
		var rc io.ReadCloser
		rc, err = r.File[0].Open()
		if err != nil {
			break
		}
		defer rc.Close()
		decoder = rc
	default:
		// return the data as is
		return data, nil
	}

	if err != nil {
		return nil, fmt.Errorf("utils: opening %s data: %w", ext, err)
	}

	// read the decompressed data into a byte slice
	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("utils: decompressing %s data: %w", ext, err)
	}

	return out, nil
}
