package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mevdschee/rxx/internal/config"
	"github.com/mevdschee/rxx/internal/holepunch"
	"github.com/mevdschee/rxx/internal/hook"
	"github.com/mevdschee/rxx/internal/transfer"
)

func runReceive(args []string) error {
	fs := flag.NewFlagSet("receive", flag.ExitOnError)
	outDir := fs.String("o", ".", "directory to write the received file into")
	certPath := fs.String("cert", "", "TLS certificate (self-signed if omitted)")
	keyPath := fs.String("key", "", "TLS private key (self-signed if omitted)")
	peerID := fs.String("from", "", "literal IPv6 address or registered id of the peer expected to send a file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *peerID == "" {
		return fmt.Errorf("usage: rxx receive --from <source> [-o OUTDIR] [--cert PATH --key PATH]\n\nsource is either a literal IPv6 address or a registered peer id")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("create output directory %s: %w", *outDir, err)
	}

	cfgPath, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	peerAddr, err := resolvePeer(cfg, *peerID)
	if err != nil {
		return fmt.Errorf("resolve peer %q: %w", *peerID, err)
	}

	result, err := holepunch.Punch(holepunch.RoleServer, peerAddr)
	if err != nil {
		return fmt.Errorf("hole-punch to %s: %w", peerAddr, err)
	}
	defer result.Conn.Close()

	tlsConf, err := transfer.ServerTLSConfig(*certPath, *keyPath)
	if err != nil {
		return fmt.Errorf("set up TLS: %w", err)
	}

	ln, err := transfer.Listen(result.Conn, tlsConf)
	if err != nil {
		return fmt.Errorf("listen for incoming transfer: %w", err)
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	received, err := transfer.ReceiveFile(ctx, ln, *outDir)
	if err != nil {
		return fmt.Errorf("receive from %s: %w", *peerID, err)
	}

	fmt.Printf("received %s (%d bytes) from %s -> %s\n", received.Filename, received.Size, received.SenderID, received.Path)

	go hook.Run(cfg.Hooks.FileReceived, received.SenderID, received.Filename, received.Size)
	return nil
}
