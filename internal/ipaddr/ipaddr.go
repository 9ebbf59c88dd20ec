// Package ipaddr enumerates this host's IPv6 addresses and ranks them by
// how likely they are to be reachable from a peer on the public internet.
// It is plumbing the rendezvous protocol depends on but does not define:
// the wire format only ever carries a bare IPv6 literal.
package ipaddr

import "net"

// Candidate is one scored local address.
type Candidate struct {
	Addr  net.IP
	Score int
}

// Scoring favours global unicast addresses over link-local and
// unique-local ones, matching the rough preference order a peer on the
// open internet would need to actually dial back in.
const (
	scoreGlobalUnicast = 100
	scoreUniqueLocal   = 10
	scoreLinkLocal     = 1
	scoreOther         = 0
)

func score(ip net.IP) int {
	switch {
	case ip.IsLoopback():
		return scoreOther
	case ip.IsLinkLocalUnicast():
		return scoreLinkLocal
	case isUniqueLocal(ip):
		return scoreUniqueLocal
	case ip.IsGlobalUnicast():
		return scoreGlobalUnicast
	default:
		return scoreOther
	}
}

// isUniqueLocal reports whether ip falls in fc00::/7, RFC 4193's ULA range.
func isUniqueLocal(ip net.IP) bool {
	ip6 := ip.To16()
	if ip6 == nil {
		return false
	}
	return ip6[0]&0xfe == 0xfc
}

// Candidates enumerates the IPv6 addresses bound to local interfaces,
// scored best-first; loopback and other zero-scored addresses are left out. Interfaces that fail to report addresses are
// skipped rather than treated as fatal.
func Candidates() ([]Candidate, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP
			if ip.To4() != nil || ip.To16() == nil {
				continue // IPv4 or IPv4-mapped: out of scope
			}
			s := score(ip)
			if s == scoreOther {
				continue
			}
			out = append(out, Candidate{Addr: ip, Score: s})
		}
	}

	sortByScoreDesc(out)
	return out, nil
}

// Best returns the highest-scored candidate, or an empty IP if none exist.
func Best() (net.IP, error) {
	cands, err := Candidates()
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return cands[0].Addr, nil
}

func sortByScoreDesc(c []Candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].Score > c[j-1].Score; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}
