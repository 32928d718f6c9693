package csvdb

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/juju/errors"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

type compressedFile struct {
	io.Reader

	file         *os.File
	decompressor io.Closer
}

func (c *compressedFile) Close() error {
	if c.decompressor != nil {
		c.decompressor.Close() // nolint
	}

	return c.file.Close()
}

// Open opens a table for reading. Files with .gz and .xz extensions are
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	rawFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open file %s", path)
	}

	bufferedFile := bufio.NewReader(rawFile)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gzipFile, err := gzip.NewReader(bufferedFile)
		if err != nil {
			rawFile.Close() // nolint
			return nil, errors.Annotate(err, "Incorrect gzip archive")
		}

		return &compressedFile{Reader: gzipFile, file: rawFile, decompressor: gzipFile}, nil
	case ".xz":
		xzFile, err := xz.NewReader(bufferedFile)
		if err != nil {
			rawFile.Close() // nolint
			return nil, errors.Annotate(err, "Incorrect xz archive")
		}

		return &compressedFile{Reader: xzFile, file: rawFile}, nil
	}

	return &compressedFile{Reader: bufferedFile, file: rawFile}, nil
}

// Digest returns a hex-encoded BLAKE3 sum of the data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// Format joins blocks with newlines. There is no trailing newline.
func Format(blocks []Block) []byte {
	buf := bytes.Buffer{}

	for i, v := range blocks {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(v.String())
	}

	return buf.Bytes()
}

// WriteFile stores blocks into the file at path. The file is replaced
// atomically and only if its content differs. It returns a digest of the
// content and a flag if file was changed.
func WriteFile(path string, blocks []Block) (string, bool, error) {
	content := Format(blocks)
	checksum := Digest(content)

	if current, err := ioutil.ReadFile(path); err == nil {
		currentChecksum := Digest(current)
		if currentChecksum == checksum {
			log.WithFields(log.Fields{
				"checksum": checksum,
				"path":     path,
			}).Debug("File is up to date.")

			return checksum, false, nil
		}

		log.WithFields(log.Fields{
			"current_checksum": currentChecksum,
			"new_checksum":     checksum,
			"path":             path,
		}).Debug("Update file.")
	} else if !os.IsNotExist(err) {
		return "", false, errors.Annotatef(err, "Cannot read file %s", path)
	}

	tempFile, err := ioutil.TempFile(filepath.Dir(path), "."+filepath.Base(path)+".")
	if err != nil {
		return "", false, errors.Annotate(err, "Cannot create temporary file")
	}
	renamed := false
	defer func() {
		tempFile.Close() // nolint
		if !renamed {
			os.Remove(tempFile.Name()) // nolint
		}
	}()

	if err = tempFile.Chmod(0644); err != nil {
		return "", false, errors.Annotate(err, "Cannot change mode of temporary file")
	}

	if _, err = tempFile.Write(content); err != nil {
		return "", false, errors.Annotate(err, "Cannot write to the temporary file")
	}

	if err = tempFile.Close(); err != nil {
		return "", false, errors.Annotate(err, "Cannot close temporary file")
	}

	if err = os.Rename(tempFile.Name(), path); err != nil {
		return "", false, errors.Annotatef(err, "Cannot move new file to correct location %s", path)
	}
	renamed = true

	return checksum, true, nil
}
