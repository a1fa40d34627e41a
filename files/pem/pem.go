package pem

import (
	"encoding/pem"
	"errors"
)

// Kind is what a DER block contains.
type Kind string

const (
	Certificate        Kind = "certificate"
	CertificateRequest Kind = "csr"
)

// Block is one DER object found in a file.
type Block struct {
	Kind  Kind
	Type  string // PEM block type, empty for raw DER input
	Bytes []byte
}

var blockKinds = map[string]Kind{
	"CERTIFICATE":             Certificate,
	"CERTIFICATE REQUEST":     CertificateRequest,
	"NEW CERTIFICATE REQUEST": CertificateRequest,
}

// ErrNoBlocks is returned when PEM input holds no certificate or request.
var ErrNoBlocks = errors.New("no certificate or certificate request found")

// LoadAll certificates and certificate requests from content. Other PEM
// blocks, such as keys, are skipped.
func LoadAll(content []byte) ([]Block, error) {
	var block *pem.Block
	var blocks []Block

	for {
		block, content = pem.Decode(content)
		if block == nil {
			break
		}
		kind, ok := blockKinds[block.Type]
		if !ok {
			continue
		}
		blocks = append(blocks, Block{
			Kind:  kind,
			Type:  block.Type,
			Bytes: block.Bytes,
		})
	}

	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}
	return blocks, nil
}

// LoadDER wraps raw DER content as a single block of the given kind.
func LoadDER(content []byte, kind Kind) ([]Block, error) {
	switch kind {
	case Certificate, CertificateRequest:
	default:
		return nil, errors.New("unknown kind " + string(kind))
	}
	if len(content) == 0 {
		return nil, ErrNoBlocks
	}
	return []Block{{Kind: kind, Bytes: content}}, nil
}
