package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

// Client talks to a remote registry server over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient wraps a registry base URL (e.g. "http://rendezvous.example:3457").
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// Register registers id/address and returns the minted nonce.
func (c *Client) Register(id, address string) (string, error) {
	body, _ := json.Marshal(registerRequest{ID: id, Address: address})
	resp, err := c.HTTP.Post(c.BaseURL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", rxxerr.Wrap(rxxerr.RegistryUnreachable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out registerResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", rxxerr.Wrap(rxxerr.RegistryUnreachable, err)
		}
		return out.Nonce, nil
	case http.StatusConflict:
		return "", rxxerr.New(rxxerr.RegistryConflict, fmt.Sprintf("id %q is already registered", id))
	case http.StatusBadRequest:
		return "", rxxerr.New(rxxerr.InvalidIdentifier, fmt.Sprintf("invalid identifier %q", id))
	default:
		return "", rxxerr.New(rxxerr.RegistryUnreachable, fmt.Sprintf("register: unexpected status %d", resp.StatusCode))
	}
}

// Update refreshes id's address and resolves peerID's current address in
// one round trip.
func (c *Client) Update(id, address, nonce, peerID string) (string, error) {
	body, _ := json.Marshal(updateRequest{ID: id, Address: address, Nonce: nonce, PeerID: peerID})
	resp, err := c.HTTP.Post(c.BaseURL+"/update", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", rxxerr.Wrap(rxxerr.RegistryUnreachable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out updateResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", rxxerr.Wrap(rxxerr.RegistryUnreachable, err)
		}
		return out.PeerAddress, nil
	case http.StatusUnauthorized:
		return "", rxxerr.New(rxxerr.RegistryAuth, "registration nonce rejected")
	case http.StatusNotFound:
		return "", rxxerr.New(rxxerr.PeerNotFound, fmt.Sprintf("peer %q not found or stale", peerID))
	default:
		return "", rxxerr.New(rxxerr.RegistryUnreachable, fmt.Sprintf("update: unexpected status %d", resp.StatusCode))
	}
}
