package transfer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"

	"github.com/quic-go/quic-go"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// SendFile dials peerAddr over the already-punched socket, opens one
// bidirectional stream, sends the framed file, closes the stream's write
// side (FIN), and then waits until the receiver closes the connection (or
// ctx ends) before closing it itself with application code 0, so the
// trailing digest is not cut off by an early connection close.
func SendFile(ctx context.Context, conn *net.UDPConn, peerAddr *net.UDPAddr, tlsConf *tls.Config, senderID, filename string, file *os.File) error {
	qconn, err := Dial(ctx, conn, peerAddr, tlsConf)
	if err != nil {
		return err
	}
	defer qconn.CloseWithError(closeCodeTransferDone, "transfer complete")

	stream, err := qconn.OpenStreamSync(ctx)
	if err != nil {
		return rxxerr.Wrap(rxxerr.QuicHandshake, fmt.Errorf("open stream: %w", err))
	}

	if err := Send(stream, senderID, filename, file); err != nil {
		stream.Close()
		return err
	}

	if err := stream.Close(); err != nil {
		return rxxerr.Wrap(rxxerr.StreamProtocol, fmt.Errorf("close stream: %w", err))
	}

	// stream.Close only queues the FIN; the receiver closes the connection
	// once it has read the whole frame.
	select {
	case <-qconn.Context().Done():
	case <-ctx.Done():
	}

	return nil
}

// ReceiveFile accepts one QUIC connection, accepts its single bidirectional
// stream, and decodes the framed file into outDir.
func ReceiveFile(ctx context.Context, ln *quic.Listener, outDir string) (Received, error) {
	qconn, err := ln.Accept(ctx)
	if err != nil {
		return Received{}, rxxerr.Wrap(rxxerr.QuicHandshake, fmt.Errorf("accept connection: %w", err))
	}
	defer qconn.CloseWithError(closeCodeTransferDone, "transfer complete")

	stream, err := qconn.AcceptStream(ctx)
	if err != nil {
		return Received{}, rxxerr.Wrap(rxxerr.QuicHandshake, fmt.Errorf("accept stream: %w", err))
	}
	defer stream.Close()

	return Receive(stream, outDir)
}
