package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mevdschee/rxx/internal/config"
	"github.com/mevdschee/rxx/internal/registry"
)

// transferTimeout bounds the QUIC handshake and transfer of a single file
// so a CLI invocation never hangs indefinitely. Hole punching runs before
// this timeout starts and is bounded by its own per-attempt deadlines.
const transferTimeout = 5 * time.Minute

// resolvePeer accepts either a literal IPv6 address or a registered user
// id. A literal address is used as-is, bypassing the registry (and this
// host's own address discovery) entirely; anything else is resolved
// through the registry's /update endpoint, which also refreshes the
// caller's own registration in the same call.
func resolvePeer(cfg config.Config, peerArg string) (string, error) {
	if ip := net.ParseIP(peerArg); ip != nil && strings.Contains(peerArg, ":") && ip.To4() == nil {
		return ip.String(), nil
	}

	ownAddr, err := ownAddress()
	if err != nil {
		return "", fmt.Errorf("determine own address: %w", err)
	}

	client := registry.NewClient(cfg.ServerURL)
	return client.Update(cfg.UserID, ownAddr, cfg.Nonce, peerArg)
}
