package transfer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

const (
	maxIdleTimeout        = 300 * time.Second
	keepAlivePeriod       = 10 * time.Second
	streamReceiveWindow   = 1 << 20  // 1 MiB
	connReceiveWindow     = 10 << 20 // 10 MiB
	connSendWindow        = 10 << 20 // 10 MiB
	closeCodeTransferDone = quic.ApplicationErrorCode(0)
)

func quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:                 maxIdleTimeout,
		KeepAlivePeriod:                keepAlivePeriod,
		InitialStreamReceiveWindow:     streamReceiveWindow,
		MaxStreamReceiveWindow:         streamReceiveWindow,
		InitialConnectionReceiveWindow: connReceiveWindow,
		MaxConnectionReceiveWindow:     connReceiveWindow,
	}
}

// Listen wraps the already-punched UDP socket in a QUIC server endpoint.
func Listen(conn *net.UDPConn, tlsConf *tls.Config) (*quic.Listener, error) {
	ln, err := quic.Listen(conn, tlsConf, quicConfig())
	if err != nil {
		return nil, rxxerr.Wrap(rxxerr.QuicHandshake, fmt.Errorf("listen: %w", err))
	}
	return ln, nil
}

// Dial opens a QUIC client connection to peerAddr over the punched socket.
func Dial(ctx context.Context, conn *net.UDPConn, peerAddr *net.UDPAddr, tlsConf *tls.Config) (*quic.Conn, error) {
	qconn, err := quic.Dial(ctx, conn, peerAddr, tlsConf, quicConfig())
	if err != nil {
		return nil, rxxerr.Wrap(rxxerr.QuicHandshake, fmt.Errorf("dial %s: %w", peerAddr, err))
	}
	return qconn, nil
}
