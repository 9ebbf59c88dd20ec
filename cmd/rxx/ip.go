package main

import (
	"fmt"

	"github.com/mevdschee/rxx/internal/ipaddr"
)

func runIP([]string) error {
	cands, err := ipaddr.Candidates()
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Println("no IPv6 candidates found")
		return nil
	}
	for _, c := range cands {
		fmt.Printf("%-40s score=%d\n", c.Addr, c.Score)
	}
	return nil
}

// ownAddress picks the best candidate IPv6 address to advertise to the
// rendezvous server.
func ownAddress() (string, error) {
	ip, err := ipaddr.Best()
	if err != nil {
		return "", err
	}
	if ip == nil {
		return "", fmt.Errorf("no usable IPv6 address found on this host")
	}
	return ip.String(), nil
}
