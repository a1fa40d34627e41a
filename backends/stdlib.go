package backends

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"

	"github.com/certcat/certext/files/pem"
)

// stdlibBackend parses with crypto/x509.
type stdlibBackend struct{}

func (stdlibBackend) Name() string { return "stdlib" }

func (stdlibBackend) Open(block pem.Block) (*Object, error) {
	var (
		algorithm x509.SignatureAlgorithm
		parsed    []pkix.Extension
	)
	switch block.Kind {
	case pem.Certificate:
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		algorithm, parsed = cert.SignatureAlgorithm, cert.Extensions
	case pem.CertificateRequest:
		csr, err := x509.ParseCertificateRequest(block.Bytes)
		if err != nil {
			return nil, err
		}
		algorithm, parsed = csr.SignatureAlgorithm, csr.Extensions
	default:
		return nil, fmt.Errorf("stdlib: unsupported kind %q", block.Kind)
	}

	var exts rawExtensions
	for _, ext := range parsed {
		var err error
		exts, err = appendExtension(exts, ext.Id, ext.Critical, ext.Value)
		if err != nil {
			return nil, err
		}
	}

	return &Object{
		Kind:               block.Kind,
		SignatureAlgorithm: algorithm.String(),
		Extensions:         exts,
	}, nil
}
