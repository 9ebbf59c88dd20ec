package main

import (
	"flag"
	"fmt"

	"github.com/mevdschee/rxx/internal/config"
	"github.com/mevdschee/rxx/internal/registry"
)

func runRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	server := fs.String("server", "http://localhost:3457", "rendezvous server base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rxx register <id> [--server URL]")
	}
	id := fs.Arg(0)
	if !registry.ValidateID(id) {
		return fmt.Errorf("invalid identifier %q: must be 1-20 alphanumeric characters, '.', '-' or '_', starting and ending alphanumeric", id)
	}

	addr, err := ownAddress()
	if err != nil {
		return fmt.Errorf("determine own address: %w", err)
	}

	client := registry.NewClient(*server)
	nonce, err := client.Register(id, addr)
	if err != nil {
		return fmt.Errorf("register %q: %w", id, err)
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg := config.Config{UserID: id, ServerURL: *server, Nonce: nonce}
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("registered %q as %s, config written to %s\n", id, addr, path)
	return nil
}
