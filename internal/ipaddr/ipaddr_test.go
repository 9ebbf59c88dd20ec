package ipaddr

import (
	"net"
	"testing"
)

func TestScoreOrdering(t *testing.T) {
	global := net.ParseIP("2001:db8::1")
	ula := net.ParseIP("fd00::1")
	linkLocal := net.ParseIP("fe80::1")

	if s := score(global); s != scoreGlobalUnicast {
		t.Fatalf("global score = %d, want %d", s, scoreGlobalUnicast)
	}
	if s := score(ula); s != scoreUniqueLocal {
		t.Fatalf("ULA score = %d, want %d", s, scoreUniqueLocal)
	}
	if s := score(linkLocal); s != scoreLinkLocal {
		t.Fatalf("link-local score = %d, want %d", s, scoreLinkLocal)
	}
}

func TestSortByScoreDesc(t *testing.T) {
	c := []Candidate{
		{Addr: net.ParseIP("fe80::1"), Score: scoreLinkLocal},
		{Addr: net.ParseIP("2001:db8::1"), Score: scoreGlobalUnicast},
		{Addr: net.ParseIP("fd00::1"), Score: scoreUniqueLocal},
	}
	sortByScoreDesc(c)
	if c[0].Score != scoreGlobalUnicast || c[1].Score != scoreUniqueLocal || c[2].Score != scoreLinkLocal {
		t.Fatalf("not sorted descending: %+v", c)
	}
}

func TestCandidatesDoesNotError(t *testing.T) {
	if _, err := Candidates(); err != nil {
		t.Fatalf("Candidates: %v", err)
	}
}
