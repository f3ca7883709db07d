// Package tlsopts defines the TLS configuration surface consumed by
// tlswrap: root CAs, client certificate pairs, version bounds, cipher
// suites, curve preference, and server-name override.
//
// Grounded on nabbar-golib/certificates's TLSConfig interface, trimmed to
// the fields a client-side wrapper (rather than a full server/client TLS
// manager) needs.
package tlsopts

import (
	"crypto/tls"
	"crypto/x509"
	"sync"
)

// Config is a thread-safe, mutable TLS configuration builder. Snapshot()
// produces the immutable *tls.Config tlswrap actually dials with.
type Config struct {
	mu sync.Mutex

	rootCAs    *x509.CertPool
	clientCert []tls.Certificate
	versionMin uint16
	versionMax uint16
	cipher     []uint16
	curves     []tls.CurveID
	serverName string
	insecure   bool
}

// New returns a Config with TLS 1.2 as the minimum version and TLS 1.3 as
// the maximum.
func New() *Config {
	return &Config{
		versionMin: tls.VersionTLS12,
		versionMax: tls.VersionTLS13,
	}
}

// AddRootCA appends the PEM-encoded root CA certificates in pemBytes to
// the trust pool, reporting whether any certificate was parsed.
func (c *Config) AddRootCA(pemBytes []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rootCAs == nil {
		c.rootCAs = x509.NewCertPool()
	}
	return c.rootCAs.AppendCertsFromPEM(pemBytes)
}

// AddClientCertificate registers a client certificate/key pair used for
// mutual TLS.
func (c *Config) AddClientCertificate(cert tls.Certificate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientCert = append(c.clientCert, cert)
}

// SetVersionMin sets the minimum negotiated TLS version. Clamped up to
// TLS 1.2 if given a weaker value.
func (c *Config) SetVersionMin(v uint16) {
	if v < tls.VersionTLS12 {
		v = tls.VersionTLS12
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versionMin = v
}

// SetVersionMax sets the maximum negotiated TLS version.
func (c *Config) SetVersionMax(v uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versionMax = v
}

// SetCipherSuites restricts the negotiated cipher suite list.
func (c *Config) SetCipherSuites(suites []uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cipher = append([]uint16(nil), suites...)
}

// SetCurvePreferences sets the elliptic curve preference order for ECDHE.
func (c *Config) SetCurvePreferences(curves []tls.CurveID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.curves = append([]tls.CurveID(nil), curves...)
}

// SetServerName overrides SNI / certificate-verification hostname.
func (c *Config) SetServerName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverName = name
}

// SetInsecureSkipVerify disables certificate verification. For tests
// only; nothing in this module logs when it is set.
func (c *Config) SetInsecureSkipVerify(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insecure = v
}

// InsecureSkipVerify reports the current setting.
func (c *Config) InsecureSkipVerify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insecure
}

// Snapshot builds an immutable *tls.Config for a connection attempt to
// hostname, with alpn protocols set as NextProtos.
func (c *Config) Snapshot(hostname string, alpn []string) *tls.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	sni := hostname
	if c.serverName != "" {
		sni = c.serverName
	}

	return &tls.Config{
		RootCAs:            c.rootCAs,
		Certificates:       append([]tls.Certificate(nil), c.clientCert...),
		MinVersion:         c.versionMin,
		MaxVersion:         c.versionMax,
		CipherSuites:       append([]uint16(nil), c.cipher...),
		CurvePreferences:   append([]tls.CurveID(nil), c.curves...),
		ServerName:         sni,
		InsecureSkipVerify: c.insecure,
		NextProtos:         append([]string(nil), alpn...),
	}
}
