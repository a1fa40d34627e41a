package backends

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/certcat/certext/files/pem"
	"github.com/certcat/certext/x509debug"
)

// derBackend walks the DER directly and keeps every identifier as encoded.
type derBackend struct{}

func (derBackend) Name() string { return "der" }

func (derBackend) Open(block pem.Block) (*Object, error) {
	input := cryptobyte.String(block.Bytes)

	var obj *Object
	switch block.Kind {
	case pem.Certificate:
		cert, err := x509debug.ParseCertificate(&input)
		if err != nil {
			return nil, err
		}
		obj = &Object{
			Kind:               block.Kind,
			SignatureAlgorithm: cert.SignatureAlgorithm.Algorithm.String(),
			Extensions:         cert.TbsCertificate.Extensions,
		}
	case pem.CertificateRequest:
		csr, err := x509debug.ParseCertificateRequest(&input)
		if err != nil {
			return nil, err
		}
		obj = &Object{
			Kind:               block.Kind,
			SignatureAlgorithm: csr.SignatureAlgorithm.Algorithm.String(),
			Extensions:         csr.CertificationRequestInfo.Extensions,
		}
	default:
		return nil, fmt.Errorf("der: unsupported kind %q", block.Kind)
	}

	if !input.Empty() {
		return nil, fmt.Errorf("der: %d bytes of trailing data after %s", len(input), block.Kind)
	}
	return obj, nil
}
