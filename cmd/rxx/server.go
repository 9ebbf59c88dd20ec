package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mevdschee/rxx/internal/registry"
)

func runServer(args []string) error {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	dbPath := fs.String("db", defaultDBPath(), "path to the registry's SQLite database")
	port := fs.Int("port", 3457, "TCP port the registry HTTP service listens on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := registry.OpenStore(*dbPath)
	if err != nil {
		return fmt.Errorf("open registry store: %w", err)
	}
	defer store.Close()

	srv := registry.NewServer(store)
	return srv.ListenAndServe(registry.Addr(*port))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rxx-registry.db"
	}
	return filepath.Join(home, ".rxx-registry.db")
}
