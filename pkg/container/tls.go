package container

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-connections/tlsconfig"
)

// Certificate file names expected in the certificate directory.
const (
	caFileName   = "ca.pem"
	certFileName = "cert.pem"
	keyFileName  = "key.pem"
)

// defaultCertPath returns ~/.docker, or an empty string when the home directory is unknown.
func defaultCertPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".docker")
}

// newTLSConfig builds the client TLS configuration from a certificate directory.
//
// The daemon certificate chain is always verified against ca.pem. With skipHostname
// set the daemon hostname is not compared against the certificate.
//
// Parameters:
//   - certPath: Directory holding ca.pem, cert.pem and key.pem; empty means ~/.docker.
//   - skipHostname: Verify the chain only.
//
// Returns:
//   - *tls.Config: Client TLS configuration.
//   - error: Non-nil if the certificates cannot be loaded.
func newTLSConfig(certPath string, skipHostname bool) (*tls.Config, error) {
	if certPath == "" {
		certPath = defaultCertPath()
	}

	config, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             filepath.Join(certPath, caFileName),
		CertFile:           filepath.Join(certPath, certFileName),
		KeyFile:            filepath.Join(certPath, keyFileName),
		ExclusiveRootPools: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLoadTLSConfigFailed, err)
	}

	if skipHostname {
		roots := config.RootCAs
		// Standard verification is replaced by a chain-only check below.
		config.InsecureSkipVerify = true
		config.VerifyConnection = func(state tls.ConnectionState) error {
			return verifyChain(state, roots)
		}
	}

	return config, nil
}

// verifyChain verifies the peer certificate chain against roots without a hostname check.
func verifyChain(state tls.ConnectionState, roots *x509.CertPool) error {
	if len(state.PeerCertificates) == 0 {
		return errNoPeerCertificate
	}

	intermediates := x509.NewCertPool()
	for _, cert := range state.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}

	_, err := state.PeerCertificates[0].Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errVerifyPeerFailed, err)
	}

	return nil
}
