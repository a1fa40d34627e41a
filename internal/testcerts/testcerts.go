// Package testcerts builds throwaway certificates and certificate requests
// for tests.
package testcerts

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

func key(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return k
}

// Certificate returns a self-signed DER certificate carrying exts as its
// only extensions.
func Certificate(t *testing.T, exts ...pkix.Extension) []byte {
	t.Helper()
	k := key(t)
	template := &x509.Certificate{
		SerialNumber:    big.NewInt(0x1234),
		Subject:         pkix.Name{CommonName: "certext test"},
		NotBefore:       time.Now().Add(-time.Hour),
		NotAfter:        time.Now().Add(time.Hour),
		ExtraExtensions: exts,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &k.PublicKey, k)
	require.NoError(t, err)
	return der
}

// Request returns a DER certificate request asking for exts.
func Request(t *testing.T, exts ...pkix.Extension) []byte {
	t.Helper()
	template := &x509.CertificateRequest{
		Subject:         pkix.Name{CommonName: "certext test"},
		ExtraExtensions: exts,
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, template, key(t))
	require.NoError(t, err)
	return der
}

// PEM wraps der in a PEM block of the given type.
func PEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}

// RawExtension is an extension whose OID is given as content octets, so
// tests can use identifiers encoding/asn1 cannot represent.
type RawExtension struct {
	OID      []byte
	Critical bool
	Value    []byte
}

// AddExtensions appends an Extensions SEQUENCE holding exts to b.
func AddExtensions(b *cryptobyte.Builder, exts ...RawExtension) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, e := range exts {
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1(asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
					b.AddBytes(e.OID)
				})
				if e.Critical {
					b.AddASN1Boolean(true)
				}
				b.AddASN1OctetString(e.Value)
			})
		}
	})
}

// CertificateWithRawExtensions builds a structurally valid but unsigned
// certificate around exts. The signature is a placeholder.
func CertificateWithRawExtensions(t *testing.T, exts ...RawExtension) []byte {
	t.Helper()
	sigAlg := []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x04, 0x03, 0x02} // ecdsa-with-SHA256

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddASN1Int64(2)
			})
			b.AddASN1Int64(42)
			addAlgorithm(b, sigAlg)
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // issuer
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // validity
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // subject
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // subjectPublicKeyInfo
			if len(exts) > 0 {
				b.AddASN1(asn1.Tag(3).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
					AddExtensions(b, exts...)
				})
			}
		})
		addAlgorithm(b, sigAlg)
		b.AddASN1BitString([]byte{0})
	})

	der, err := b.Bytes()
	require.NoError(t, err)
	return der
}

// RequestInfoWithAttribute builds a CertificationRequestInfo whose only
// attribute has the given type and carries exts as its single value.
func RequestInfoWithAttribute(t *testing.T, attributeType []byte, exts ...RawExtension) []byte {
	t.Helper()

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1Int64(0)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // subject
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {}) // subjectPKInfo
	b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
				b.AddBytes(attributeType)
			})
			b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {
				AddExtensions(b, exts...)
			})
		})
	})

	der, err := b.Bytes()
	require.NoError(t, err)
	return der
}

func addAlgorithm(b *cryptobyte.Builder, algorithm []byte) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
			b.AddBytes(algorithm)
		})
	})
}
