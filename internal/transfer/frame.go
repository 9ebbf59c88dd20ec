package transfer

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// DigestSize is the length of the trailing SHA-256 digest.
const DigestSize = 32

// Meta is the fixed-shape header that precedes the payload on the wire:
// sender id length+bytes, filename length+bytes, then the payload size.
type Meta struct {
	SenderID    string
	Filename    string
	PayloadSize uint64
}

func writeLenPrefixed(w io.Writer, s string) error {
	if len(s) > 1<<32-1 {
		return fmt.Errorf("field too long: %d bytes", len(s))
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// WriteMeta writes the sender id, filename, and payload size fields.
func WriteMeta(w io.Writer, m Meta) error {
	if err := writeLenPrefixed(w, m.SenderID); err != nil {
		return rxxerr.Wrap(rxxerr.IoError, err)
	}
	if err := writeLenPrefixed(w, m.Filename); err != nil {
		return rxxerr.Wrap(rxxerr.IoError, err)
	}
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], m.PayloadSize)
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return rxxerr.Wrap(rxxerr.IoError, err)
	}
	return nil
}

func readLenPrefixed(r io.Reader, maxLen uint32) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxLen {
		return "", fmt.Errorf("field length %d exceeds limit %d", n, maxLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("field is not valid UTF-8")
	}
	return string(buf), nil
}

// maxFieldLen bounds sender-id and filename length defensively; the
// protocol proper has no cap, but an unbounded length prefix would let a
// malformed stream request an arbitrary allocation.
const maxFieldLen = 1 << 16

// ReadMeta reads the header fields from the stream.
func ReadMeta(r io.Reader) (Meta, error) {
	senderID, err := readLenPrefixed(r, maxFieldLen)
	if err != nil {
		return Meta{}, rxxerr.Wrap(rxxerr.StreamProtocol, fmt.Errorf("read sender id: %w", err))
	}
	filename, err := readLenPrefixed(r, maxFieldLen)
	if err != nil {
		return Meta{}, rxxerr.Wrap(rxxerr.StreamProtocol, fmt.Errorf("read filename: %w", err))
	}
	var sizeBuf [8]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return Meta{}, rxxerr.Wrap(rxxerr.StreamProtocol, fmt.Errorf("read payload size: %w", err))
	}
	return Meta{
		SenderID:    senderID,
		Filename:    filename,
		PayloadSize: binary.BigEndian.Uint64(sizeBuf[:]),
	}, nil
}
