// Command rxx is the peer-facing CLI: register an identity with a
// rendezvous server, punch a hole to a peer, and send or receive a file
// over the resulting QUIC connection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "send":
		err = runSend(os.Args[2:])
	case "receive":
		err = runReceive(os.Args[2:])
	case "server":
		err = runServer(os.Args[2:])
	case "register":
		err = runRegister(os.Args[2:])
	case "ip":
		err = runIP(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "rxx: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rxx: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: rxx <command> [arguments]

Commands:
  register <id> [--server URL]                        claim an identifier on the rendezvous server
  send <file> <destination>                           punch to a peer and send it a file
  receive --from <source> [-o OUTDIR] [--cert PATH --key PATH]
                                                       wait for a peer to punch in and send a file
  server [--db PATH] [--port N]                       run the rendezvous registry service
  ip                                                   show this host's candidate IPv6 addresses

destination/source is either a literal IPv6 address or a registered peer id`)
}
