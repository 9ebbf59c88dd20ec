package registry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "rxx-registry-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	store, err := OpenStore(filepath.Join(dir, "registry.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return NewServer(store), func() {
		store.Close()
		os.RemoveAll(dir)
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"alice", true},
		{"a", true},
		{"a.b-c_d", true},
		{"", false},
		{".alice", false},
		{"alice.", false},
		{"-alice", false},
		{"alice-", false},
		{"has space", false},
		{string(make([]byte, 21)), false},
	}
	for _, c := range cases {
		if got := ValidateID(c.id); got != c.want {
			t.Errorf("ValidateID(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}

func TestRegisterThenDuplicate(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "alice", Address: "2001:db8::1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("first register: got %d", rec.Code)
	}
	var out registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Nonce) != 32 {
		t.Fatalf("nonce length = %d, want 32", len(out.Nonce))
	}

	rec2 := doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "alice", Address: "2001:db8::9"})
	if rec2.Code != http.StatusConflict {
		t.Fatalf("duplicate register: got %d, want 409", rec2.Code)
	}

	// the first nonce must survive the rejected duplicate
	got, ok, err := s.store.Get("alice")
	if err != nil || !ok {
		t.Fatalf("get after duplicate: %v, ok=%v", err, ok)
	}
	if got.Nonce != out.Nonce {
		t.Fatalf("nonce changed after rejected duplicate: %q != %q", got.Nonce, out.Nonce)
	}
}

func TestUpdatePeerLookup(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()
	h := s.Handler()

	recA := doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "alice", Address: "2001:db8::1"})
	var aliceReg registerResponse
	json.Unmarshal(recA.Body.Bytes(), &aliceReg)

	// bob absent -> 404
	missRec := doJSON(t, h, http.MethodPost, "/update", updateRequest{
		ID: "alice", Address: "2001:db8::1", Nonce: aliceReg.Nonce, PeerID: "bob",
	})
	if missRec.Code != http.StatusNotFound {
		t.Fatalf("update before bob registers: got %d, want 404", missRec.Code)
	}

	doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "bob", Address: "2001:db8::2"})

	okRec := doJSON(t, h, http.MethodPost, "/update", updateRequest{
		ID: "alice", Address: "2001:db8::1", Nonce: aliceReg.Nonce, PeerID: "bob",
	})
	if okRec.Code != http.StatusOK {
		t.Fatalf("update after bob registers: got %d, want 200", okRec.Code)
	}
	var upd updateResponse
	json.Unmarshal(okRec.Body.Bytes(), &upd)
	if upd.PeerAddress != "2001:db8::2" {
		t.Fatalf("peer_address = %q, want 2001:db8::2", upd.PeerAddress)
	}

	// wrong nonce -> 401, stored address unchanged
	badRec := doJSON(t, h, http.MethodPost, "/update", updateRequest{
		ID: "alice", Address: "2001:db8::77", Nonce: "wrong-nonce-wrong-nonce-wrong-no", PeerID: "bob",
	})
	if badRec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong nonce: got %d, want 401", badRec.Code)
	}
	stored, _, _ := s.store.Get("alice")
	if stored.Address != "2001:db8::1" {
		t.Fatalf("address mutated despite bad nonce: %q", stored.Address)
	}
}

func TestUpdateNoOpWhenAddressUnchanged(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()
	h := s.Handler()

	recA := doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "alice", Address: "2001:db8::1"})
	var aliceReg registerResponse
	json.Unmarshal(recA.Body.Bytes(), &aliceReg)
	doJSON(t, h, http.MethodPost, "/register", registerRequest{ID: "bob", Address: "2001:db8::2"})

	before, _, _ := s.store.Get("alice")

	doJSON(t, h, http.MethodPost, "/update", updateRequest{
		ID: "alice", Address: "2001:db8::1", Nonce: aliceReg.Nonce, PeerID: "bob",
	})

	after, _, _ := s.store.Get("alice")
	if after.UpdatedAt != before.UpdatedAt {
		t.Fatalf("updated_at changed on a no-op address update: %d != %d", after.UpdatedAt, before.UpdatedAt)
	}
}

func TestStaleRecordInvisibleToLookup(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	rec, err := s.store.Insert("bob", "2001:db8::2")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	// backdate updated_at past the freshness window directly in storage
	if _, err := s.store.db.Exec(`UPDATE registrations SET updated_at = ? WHERE id = ?`, rec.UpdatedAt-31536001, "bob"); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	_, ok, err := s.store.GetFresh("bob")
	if err != nil {
		t.Fatalf("GetFresh: %v", err)
	}
	if ok {
		t.Fatalf("stale record should be invisible to GetFresh")
	}

	_, ok, err = s.store.Get("bob")
	if err != nil || !ok {
		t.Fatalf("stale record should remain in storage: ok=%v err=%v", ok, err)
	}
}
