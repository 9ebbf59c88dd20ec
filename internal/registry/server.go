package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// Server is the rendezvous HTTP service. A single mutex serialises all
// record access, including the whole /update critical section, so a
// register→update→lookup race can never observe an intermediate state.
type Server struct {
	store *Store
	mu    sync.Mutex
}

// NewServer wraps an already-open Store.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

type registerRequest struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

type registerResponse struct {
	Nonce string `json:"nonce"`
}

type updateRequest struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
	PeerID  string `json:"peer_id"`
}

type updateResponse struct {
	PeerAddress string `json:"peer_address"`
}

// Handler builds the ServeMux exposing /register and /update.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/update", s.handleUpdate)
	return mux
}

// ListenAndServe starts the registry HTTP listener on addr (e.g. ":3457").
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("registry: listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if !ValidateID(req.ID) || req.Address == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	rec, err := s.store.Insert(req.ID, req.Address)
	s.mu.Unlock()

	if err == ErrExists {
		w.WriteHeader(http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("registry: insert %s: %v", req.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Printf("registry: registered %s at %s", rec.ID, rec.Address)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registerResponse{Nonce: rec.Nonce})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	self, ok, err := s.store.Get(req.ID)
	if err != nil {
		log.Printf("registry: lookup %s: %v", req.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok || self.Nonce != req.Nonce {
		// A missing id and a wrong nonce are indistinguishable to the
		// caller: never leak which one it was, and never let this branch
		// touch peer lookup below.
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if self.Address != req.Address {
		if err := s.store.UpdateAddress(req.ID, req.Address); err != nil {
			log.Printf("registry: update %s: %v", req.ID, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	peer, ok, err := s.store.GetFresh(req.PeerID)
	if err != nil {
		log.Printf("registry: peer lookup %s: %v", req.PeerID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updateResponse{PeerAddress: peer.Address})
}

// Addr formats a TCP listen address for a bare port, matching the
// signaling server's ":8080"-style convention.
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}
