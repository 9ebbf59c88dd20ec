package transfer

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// Received describes a file that passed digest verification.
type Received struct {
	SenderID string
	Filename string
	Size     int64
	Path     string
}

// Receive reads one frame off stream, verifying the filename stays inside
// outDir and that the trailing digest matches, following the
// AwaitMeta -> AwaitPayload -> AwaitTrailer -> Verify state machine: the
// payload and the 32-byte digest share one byte stream, so a single 64 KiB
// read can straddle the boundary between them and must be split in place.
func Receive(stream io.Reader, outDir string) (Received, error) {
	meta, err := ReadMeta(stream)
	if err != nil {
		return Received{}, err
	}

	outPath, err := safeOutputPath(outDir, meta.Filename)
	if err != nil {
		return Received{}, rxxerr.Wrap(rxxerr.StreamProtocol, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Received{}, rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("create output file: %w", err))
	}

	err = receivePayloadAndTrailer(stream, out, meta.PayloadSize)
	out.Close()
	if err != nil {
		os.Remove(outPath)
		return Received{}, err
	}

	return Received{
		SenderID: meta.SenderID,
		Filename: meta.Filename,
		Size:     int64(meta.PayloadSize),
		Path:     outPath,
	}, nil
}

// receivePayloadAndTrailer implements the AwaitPayload(remaining) ->
// AwaitTrailer(remaining_of_32) -> Verify transitions.
func receivePayloadAndTrailer(stream io.Reader, out io.Writer, payloadSize uint64) error {
	hasher := sha256.New()
	buf := make([]byte, chunkSize)
	var totalReceived uint64
	var trailer []byte

	for totalReceived < payloadSize {
		n, err := stream.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			remaining := payloadSize - totalReceived
			if uint64(n) <= remaining {
				hasher.Write(chunk)
				if _, werr := out.Write(chunk); werr != nil {
					return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("write payload: %w", werr))
				}
				totalReceived += uint64(n)
			} else {
				split := remaining
				payloadPart := chunk[:split]
				trailerPart := chunk[split:]

				hasher.Write(payloadPart)
				if _, werr := out.Write(payloadPart); werr != nil {
					return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("write payload: %w", werr))
				}
				totalReceived += split

				trailer = append(trailer, trailerPart...)
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("read stream: %w", err))
		}
	}

	if totalReceived != payloadSize {
		return rxxerr.New(rxxerr.SizeMismatch, fmt.Sprintf("received %d bytes, expected %d", totalReceived, payloadSize))
	}

	for len(trailer) < DigestSize {
		need := DigestSize - len(trailer)
		tmp := make([]byte, need)
		n, err := io.ReadFull(stream, tmp)
		trailer = append(trailer, tmp[:n]...)
		if err != nil {
			return rxxerr.Wrap(rxxerr.StreamProtocol, fmt.Errorf("read digest trailer: %w", err))
		}
	}

	want := hasher.Sum(nil)
	if subtle.ConstantTimeCompare(want, trailer[:DigestSize]) != 1 {
		return rxxerr.New(rxxerr.IntegrityMismatch, "sha-256 digest mismatch")
	}
	return nil
}

// safeOutputPath rejects any filename containing a path separator or the
// sequence ".." anywhere in it, matching the room-operator path-traversal guard: a
// received filename names a single file inside outDir, never a path.
func safeOutputPath(outDir, filename string) (string, error) {
	if filename == "" || strings.ContainsRune(filename, 0) {
		return "", fmt.Errorf("invalid filename")
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return "", fmt.Errorf("filename contains a path separator: %q", filename)
	}

	joined := filepath.Join(outDir, filename)
	absBase, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if absJoined != absBase && !strings.HasPrefix(absJoined, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("filename escapes output directory: %q", filename)
	}
	return joined, nil
}
