package transfer

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

const chunkSize = 64 * 1024

// Send streams senderID/filename/size metadata, then the file contents in
// 64 KiB chunks while hashing them, then the trailing SHA-256 digest.
// Zero-byte files are refused before the stream is touched.
func Send(stream io.Writer, senderID, filename string, file *os.File) error {
	info, err := file.Stat()
	if err != nil {
		return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("stat file: %w", err))
	}
	size := info.Size()
	if size == 0 {
		return rxxerr.New(rxxerr.IoError, "cannot send empty file")
	}

	if err := WriteMeta(stream, Meta{SenderID: senderID, Filename: filename, PayloadSize: uint64(size)}); err != nil {
		return err
	}

	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	var sent int64
	for sent < size {
		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
			if _, werr := stream.Write(buf[:n]); werr != nil {
				return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("write payload: %w", werr))
			}
			sent += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("read file: %w", err))
		}
	}
	if sent != size {
		return rxxerr.New(rxxerr.SizeMismatch, fmt.Sprintf("read %d bytes, expected %d", sent, size))
	}

	if _, err := stream.Write(hasher.Sum(nil)); err != nil {
		return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("write digest: %w", err))
	}

	return nil
}
