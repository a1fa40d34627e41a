package backends

import (
	"fmt"

	zx509 "github.com/zmap/zcrypto/x509"

	"github.com/certcat/certext/files/pem"
)

// zcryptoBackend parses certificates with zcrypto, which tolerates many
// encodings crypto/x509 refuses. It does not handle certificate requests.
type zcryptoBackend struct{}

func (zcryptoBackend) Name() string { return "zcrypto" }

func (zcryptoBackend) Open(block pem.Block) (*Object, error) {
	if block.Kind != pem.Certificate {
		return nil, fmt.Errorf("zcrypto: unsupported kind %q", block.Kind)
	}

	cert, err := zx509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}

	var exts rawExtensions
	for _, ext := range cert.Extensions {
		exts, err = appendExtension(exts, ext.Id, ext.Critical, ext.Value)
		if err != nil {
			return nil, err
		}
	}

	return &Object{
		Kind:               block.Kind,
		SignatureAlgorithm: cert.SignatureAlgorithmOID.String(),
		Extensions:         exts,
	}, nil
}
