package tgnvoda

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
)

type TLSVerifyMode int

const (
	// TLSVerifySystem verifies against the system trust store.
	TLSVerifySystem TLSVerifyMode = iota
	TLSVerifyDisabled
	// TLSVerifyCABundle verifies against the certificates of a PEM file only.
	TLSVerifyCABundle
)

func (m TLSVerifyMode) String() string {
	switch m {
	case TLSVerifySystem:
		return "system"
	case TLSVerifyDisabled:
		return "disabled"
	case TLSVerifyCABundle:
		return "ca-bundle"
	}
	return fmt.Sprintf("TLSVerifyMode(%d)", int(m))
}

type TLSPolicy struct {
	Mode         TLSVerifyMode
	CABundlePath string
}

// ParseTLSPolicy turns the verify flag and ca bundle setting into a policy,
// a ca bundle path takes precedence over the flag.
func ParseTLSPolicy(verify bool, caBundle string) TLSPolicy {
	if caBundle != "" {
		return TLSPolicy{Mode: TLSVerifyCABundle, CABundlePath: caBundle}
	}
	if !verify {
		return TLSPolicy{Mode: TLSVerifyDisabled}
	}
	return TLSPolicy{Mode: TLSVerifySystem}
}

// apply mutates the transport's tls config in place so settings that were
// placed on it by transport wrappers survive.
func (p TLSPolicy) apply(transport *http.Transport) error {
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	cfg := transport.TLSClientConfig

	switch p.Mode {
	case TLSVerifySystem:
		cfg.InsecureSkipVerify = false
		cfg.RootCAs = nil
	case TLSVerifyDisabled:
		cfg.InsecureSkipVerify = true
	case TLSVerifyCABundle:
		pem, err := os.ReadFile(p.CABundlePath)
		if err != nil {
			return fmt.Errorf("read ca bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return fmt.Errorf("ca bundle %s contains no certificates", p.CABundlePath)
		}
		cfg.InsecureSkipVerify = false
		cfg.RootCAs = pool
	default:
		return fmt.Errorf("unknown tls verify mode %s", p.Mode)
	}
	return nil
}
