package transfer

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

func writeTempFile(t *testing.T, dir string, size int) (*os.File, []byte) {
	t.Helper()
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	path := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open temp file: %v", err)
	}
	return f, data
}

func TestRoundTripSizes(t *testing.T) {
	sizes := []int{1, 64*1024 - 1, 64 * 1024, 64*1024 + 1, 10 * 1024 * 1024}
	for _, size := range sizes {
		size := size
		t.Run(sizeLabel(size), func(t *testing.T) {
			srcDir := t.TempDir()
			dstDir := t.TempDir()

			f, data := writeTempFile(t, srcDir, size)
			defer f.Close()

			var wire bytes.Buffer
			if err := Send(&wire, "alice", "report.bin", f); err != nil {
				t.Fatalf("Send: %v", err)
			}

			got, err := Receive(&wire, dstDir)
			if err != nil {
				t.Fatalf("Receive: %v", err)
			}
			if got.Size != int64(size) {
				t.Fatalf("Size = %d, want %d", got.Size, size)
			}

			written, err := os.ReadFile(got.Path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if !bytes.Equal(written, data) {
				t.Fatalf("round-tripped bytes differ for size %d", size)
			}
		})
	}
}

func sizeLabel(n int) string {
	switch n {
	case 1:
		return "1B"
	case 64*1024 - 1:
		return "64KiB-1"
	case 64 * 1024:
		return "64KiB"
	case 64*1024 + 1:
		return "64KiB+1"
	default:
		return "10MiB"
	}
}

func TestZeroByteFileRefused(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var wire bytes.Buffer
	err = Send(&wire, "alice", "empty.bin", f)
	if err == nil {
		t.Fatal("expected error sending empty file")
	}
	if !rxxerr.Is(err, rxxerr.IoError) {
		t.Fatalf("expected IoError, got %v", err)
	}
}

func TestFilenamePathSeparatorRejected(t *testing.T) {
	dstDir := t.TempDir()
	var wire bytes.Buffer
	if err := WriteMeta(&wire, Meta{SenderID: "alice", Filename: "../escape.bin", PayloadSize: 3}); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	wire.Write([]byte{1, 2, 3})
	sum := sha256.Sum256([]byte{1, 2, 3})
	wire.Write(sum[:])

	_, err := Receive(&wire, dstDir)
	if err == nil {
		t.Fatal("expected error for path-escaping filename")
	}
	if !rxxerr.Is(err, rxxerr.StreamProtocol) {
		t.Fatalf("expected StreamProtocol, got %v", err)
	}
}

// TestBoundaryStraddlingRead crafts a stream whose first 64 KiB payload
// read holds all 65526 payload bytes immediately followed by the first 10
// digest bytes, exercising the split rule and the read that completes the
// remaining 22 bytes of the trailer.
func TestBoundaryStraddlingRead(t *testing.T) {
	dstDir := t.TempDir()
	payload := bytes.Repeat([]byte{0xAB}, 64*1024-10)
	digest := sha256.Sum256(payload)

	var meta bytes.Buffer
	if err := WriteMeta(&meta, Meta{SenderID: "alice", Filename: "straddle.bin", PayloadSize: uint64(len(payload))}); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}

	body := append(append([]byte{}, payload...), digest[:]...)
	full := append(meta.Bytes(), body...)

	got, err := Receive(bytes.NewReader(full), dstDir)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	written, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(written, payload) {
		t.Fatal("payload mismatch after boundary-straddling read")
	}
}

func TestDigestMismatchFatal(t *testing.T) {
	dstDir := t.TempDir()
	payload := []byte("hello world")

	var wire bytes.Buffer
	if err := WriteMeta(&wire, Meta{SenderID: "alice", Filename: "bad.bin", PayloadSize: uint64(len(payload))}); err != nil {
		t.Fatalf("WriteMeta: %v", err)
	}
	wire.Write(payload)
	wire.Write(make([]byte, DigestSize)) // wrong digest

	_, err := Receive(&wire, dstDir)
	if err == nil {
		t.Fatal("expected digest mismatch error")
	}
	if !rxxerr.Is(err, rxxerr.IntegrityMismatch) {
		t.Fatalf("expected IntegrityMismatch, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dstDir, "bad.bin")); !os.IsNotExist(statErr) {
		t.Fatal("partial output file should be removed on digest mismatch")
	}
}
