package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mevdschee/rxx/internal/config"
	"github.com/mevdschee/rxx/internal/holepunch"
	"github.com/mevdschee/rxx/internal/transfer"
)

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: rxx send <file> <destination>\n\ndestination is either a literal IPv6 address or a registered peer id")
	}
	filePath := fs.Arg(0)
	peerID := fs.Arg(1)

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	peerAddr, err := resolvePeer(cfg, peerID)
	if err != nil {
		return fmt.Errorf("resolve peer %q: %w", peerID, err)
	}

	result, err := holepunch.Punch(holepunch.RoleClient, peerAddr)
	if err != nil {
		return fmt.Errorf("hole-punch to %s: %w", peerAddr, err)
	}
	defer result.Conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	if err := transfer.SendFile(ctx, result.Conn, result.PeerAddr, transfer.ClientTLSConfig(), cfg.UserID, filepath.Base(filePath), f); err != nil {
		return fmt.Errorf("send %s to %s: %w", filePath, peerID, err)
	}

	fmt.Printf("sent %s to %s\n", filepath.Base(filePath), peerID)
	return nil
}
