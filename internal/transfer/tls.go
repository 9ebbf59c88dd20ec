package transfer

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/mevdschee/rxx/internal/rxxerr"
)

const alpn = "rxx-transfer/1"

// ClientTLSConfig disables peer-certificate verification entirely; the
// registry's nonce is the only identity anchor this system has.
func ClientTLSConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{alpn},
	}
}

// ServerTLSConfig loads an externally supplied certificate/key pair when
// both paths are non-empty, and otherwise falls back to a freshly
// generated self-signed certificate valid for "localhost".
func ServerTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	var cert tls.Certificate
	var err error
	if certPath != "" && keyPath != "" {
		cert, err = tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, rxxerr.Wrap(rxxerr.TlsSetup, fmt.Errorf("load cert/key: %w", err))
		}
	} else {
		cert, err = generateSelfSigned()
		if err != nil {
			return nil, rxxerr.Wrap(rxxerr.TlsSetup, err)
		}
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpn},
	}, nil
}

func generateSelfSigned() (tls.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate key: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	return tls.X509KeyPair(certPEM, keyPEM)
}
