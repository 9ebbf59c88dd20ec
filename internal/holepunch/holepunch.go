// Package holepunch implements the symmetric UDP probe/ACK exchange that
// opens a firewall pinhole on both sides of a peer pair before the QUIC
// layer takes over the same socket.
package holepunch

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// Role selects the fixed local/remote port pair. The asymmetry guarantees
// both sides can bind locally without colliding, even when testing two
// roles on the same host.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

const (
	// ServerLocalPort is bound by the server role; the client role targets it.
	ServerLocalPort = 3458
	// ClientLocalPort is bound by the client role; the server role targets it.
	ClientLocalPort = 3457
)

const (
	probeMsg    = "RXX_PROBE"
	probeAckMsg = "RXX_PROBE_ACK"
)

const (
	attemptTimeout = 10 * time.Second
	maxRetries     = 3
	probeInterval  = 1 * time.Second
)

func localPort(role Role) int {
	if role == RoleServer {
		return ServerLocalPort
	}
	return ClientLocalPort
}

func peerPort(role Role) int {
	if role == RoleServer {
		return ClientLocalPort
	}
	return ServerLocalPort
}

// Result carries the punched socket and the canonical peer endpoint to
// hand off to the transport layer.
type Result struct {
	Conn     *net.UDPConn
	PeerAddr *net.UDPAddr
}

// Punch binds the role's fixed local port and exchanges probes with the
// peer's fixed port until both sent_probe and (received_probe or
// received_ack) are true, or all retries are exhausted.
func Punch(role Role, peerHost string) (*Result, error) {
	lPort := localPort(role)
	rPort := peerPort(role)

	laddr := &net.UDPAddr{IP: net.IPv6unspecified, Port: lPort}
	conn, err := net.ListenUDP("udp6", laddr)
	if err != nil {
		return nil, rxxerr.Wrap(rxxerr.IoError, fmt.Errorf("bind [::]:%d: %w", lPort, err))
	}

	raddr, err := net.ResolveUDPAddr("udp6", fmt.Sprintf("[%s]:%d", peerHost, rPort))
	if err != nil {
		conn.Close()
		return nil, rxxerr.Wrap(rxxerr.NoSuitableAddress, fmt.Errorf("resolve peer %s:%d: %w", peerHost, rPort, err))
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ok, err := punchAttempt(conn, raddr)
		if err != nil {
			log.Printf("holepunch: attempt %d/%d transient error: %v", attempt, maxRetries, err)
			continue
		}
		if ok {
			return &Result{Conn: conn, PeerAddr: raddr}, nil
		}
		log.Printf("holepunch: attempt %d/%d timed out", attempt, maxRetries)
	}

	conn.Close()
	return nil, rxxerr.New(rxxerr.PunchTimeout, fmt.Sprintf("hole-punch to %s failed after %d attempts", peerHost, maxRetries))
}

// punchAttempt runs one bounded attempt: a probe ticker races incoming
// datagrams until both sent_probe and received are true, or the attempt
// deadline expires.
func punchAttempt(conn *net.UDPConn, peer *net.UDPAddr) (bool, error) {
	deadline := time.Now().Add(attemptTimeout)
	if err := conn.SetDeadline(deadline); err != nil {
		return false, err
	}

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	type datagram struct {
		buf  []byte
		n    int
		addr *net.UDPAddr
		err  error
	}
	recvCh := make(chan datagram, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 64)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if n < 0 {
				n = 0
			}
			recvCh <- datagram{buf: append([]byte(nil), buf[:n]...), n: n, addr: addr, err: err}
			if err != nil {
				return
			}
		}
	}()

	// stopReader forces the goroutine's in-flight (or next) read to
	// return immediately and blocks until it has actually exited,
	// draining any datagram it manages to queue in the meantime. Every
	// return path below goes through this: without it, the goroutine
	// can keep consuming datagrams off conn after Punch hands the same
	// socket to quic-go, stealing the first inbound QUIC packet from
	// quic-go's own read loop on a nondeterministic fraction of runs.
	stopReader := func() {
		conn.SetReadDeadline(time.Now())
		for {
			select {
			case <-done:
				conn.SetDeadline(time.Time{})
				return
			case <-recvCh:
			}
		}
	}

	sentProbe := false
	received := false

	sendProbe := func() error {
		_, err := conn.WriteToUDP([]byte(probeMsg), peer)
		return err
	}

	if err := sendProbe(); err != nil {
		stopReader()
		return false, err
	}
	sentProbe = true

	for time.Now().Before(deadline) {
		select {
		case <-ticker.C:
			if err := sendProbe(); err != nil {
				stopReader()
				return false, err
			}
			sentProbe = true

		case d := <-recvCh:
			if d.err != nil {
				stopReader()
				if nerr, ok := d.err.(net.Error); ok && nerr.Timeout() {
					return false, nil
				}
				return false, d.err
			}
			if d.addr.String() != peer.String() {
				// datagram from an unexpected source: ignored, not an error
				continue
			}
			switch d.n {
			case len(probeMsg):
				if string(d.buf) == probeMsg {
					received = true
					conn.WriteToUDP([]byte(probeAckMsg), peer)
					stopReader()
					return true, nil
				}
			case len(probeAckMsg):
				if string(d.buf) == probeAckMsg {
					received = true
					if sentProbe {
						stopReader()
						return true, nil
					}
				}
			}
		}
	}

	stopReader()
	return sentProbe && received, nil
}
