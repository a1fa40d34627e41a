// Package x509debug is package for finding the extensions of x509 certificates
// and certificate requests.
//
// It is lenient when parsing, which is bad for security but good for debugging.
// Only the fields needed to locate the extensions are read; everything else is
// skipped without being interpreted. Extension identifiers are kept exactly as
// encoded, so OIDs that no library knows about are still reported.
package x509debug

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certcat/certext/oid"
)

//	Certificate  ::=  SEQUENCE  {
//	  tbsCertificate     TBSCertificate,
//	  signatureAlgorithm AlgorithmIdentifier,
//	  signatureValue     BIT STRING  }
type Certificate struct {
	TbsCertificate     TBSCertificate
	SignatureAlgorithm AlgorithmIdentifier
}

func ParseCertificate(der *cryptobyte.String) (*Certificate, error) {
	var certificate cryptobyte.String
	if !der.ReadASN1(&certificate, asn1.SEQUENCE) {
		return nil, errors.New("failed to read Certificate Sequence")
	}

	var tbsCertificate cryptobyte.String
	if !certificate.ReadASN1(&tbsCertificate, asn1.SEQUENCE) {
		return nil, errors.New("failed to read tbsCertificate")
	}

	signatureAlgorithm, err := ParseAlgorithmIdentifier(&certificate)
	if err != nil {
		return nil, fmt.Errorf("parsing signatureAlgorithm: %w", err)
	}

	if !certificate.SkipASN1(asn1.BIT_STRING) {
		return nil, errors.New("failed to read signatureValue")
	}

	if !certificate.Empty() {
		return nil, errors.New("extra data after certificate")
	}

	parsedTBSCertificate, err := ParseTBSCertificate(&tbsCertificate)
	if err != nil {
		return nil, err
	}

	return &Certificate{
		TbsCertificate:     parsedTBSCertificate,
		SignatureAlgorithm: signatureAlgorithm,
	}, nil
}

//	TBSCertificate  ::=  SEQUENCE  {
//		 version         [0]  EXPLICIT Version DEFAULT v1,
//		 serialNumber         CertificateSerialNumber,
//		 signature            AlgorithmIdentifier,
//		 issuer               Name,
//		 validity             Validity,
//		 subject              Name,
//		 subjectPublicKeyInfo SubjectPublicKeyInfo,
//		 issuerUniqueID  [1]  IMPLICIT UniqueIdentifier OPTIONAL,
//		                      -- If present, version MUST be v2 or v3
//		 subjectUniqueID [2]  IMPLICIT UniqueIdentifier OPTIONAL,
//		                      -- If present, version MUST be v2 or v3
//		 extensions      [3]  EXPLICIT Extensions OPTIONAL
//		                      -- If present, version MUST be v3
//		 }
//
// Issuer, validity, subject and the public key are skipped.
type TBSCertificate struct {
	Version      Version
	SerialNumber CertificateSerialNumber
	Signature    AlgorithmIdentifier
	Extensions   Extensions
}

func ParseTBSCertificate(der *cryptobyte.String) (TBSCertificate, error) {
	var version uint
	if !der.ReadOptionalASN1Integer(&version, asn1.Tag(0).Constructed().ContextSpecific(), uint(0)) {
		return TBSCertificate{}, errors.New("reading version")
	}

	var serialNumber []byte
	if !der.ReadASN1Integer(&serialNumber) {
		return TBSCertificate{}, errors.New("reading serial number")
	}

	signature, err := ParseAlgorithmIdentifier(der)
	if err != nil {
		return TBSCertificate{}, err
	}

	for _, field := range []string{"issuer", "validity", "subject", "subjectPublicKeyInfo"} {
		if !der.SkipASN1(asn1.SEQUENCE) {
			return TBSCertificate{}, fmt.Errorf("failed to read %s", field)
		}
	}

	if !der.SkipOptionalASN1(asn1.Tag(1).ContextSpecific()) {
		return TBSCertificate{}, errors.New("failed to read issuer UniqueIdentifier")
	}
	if !der.SkipOptionalASN1(asn1.Tag(2).ContextSpecific()) {
		return TBSCertificate{}, errors.New("failed to read subject UniqueIdentifier")
	}

	extensions, err := ParseExtensions(der)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing extensions: %w", err)
	}

	if !der.Empty() {
		return TBSCertificate{}, errors.New("extra data after tbsCertificate")
	}

	return TBSCertificate{
		Version:      Version(version),
		SerialNumber: serialNumber,
		Signature:    signature,
		Extensions:   extensions,
	}, nil
}

//	AlgorithmIdentifier  ::=  SEQUENCE  {
//	    algorithm               OBJECT IDENTIFIER,
//	    parameters              ANY DEFINED BY algorithm OPTIONAL  }
//
// Parameters are not interpreted.
type AlgorithmIdentifier struct {
	Algorithm ObjectIdentifier
}

func ParseAlgorithmIdentifier(der *cryptobyte.String) (AlgorithmIdentifier, error) {
	var algorithmIdentifier cryptobyte.String
	if !der.ReadASN1(&algorithmIdentifier, asn1.SEQUENCE) {
		return AlgorithmIdentifier{}, errors.New("failed to read AlgorithmIdentifier")
	}

	algorithm, err := ParseObjectIdentifier(&algorithmIdentifier)
	if err != nil {
		return AlgorithmIdentifier{}, err
	}

	return AlgorithmIdentifier{
		Algorithm: algorithm,
	}, nil
}

// ObjectIdentifier holds the content octets of an OBJECT IDENTIFIER, undecoded.
type ObjectIdentifier []byte

// ParseObjectIdentifier reads an OBJECT IDENTIFIER element without checking
// its contents.
func ParseObjectIdentifier(der *cryptobyte.String) (ObjectIdentifier, error) {
	var content cryptobyte.String
	if !der.ReadASN1(&content, asn1.OBJECT_IDENTIFIER) {
		return nil, errors.New("failed to read OID")
	}
	return ObjectIdentifier(content), nil
}

// String returns the dotted form, or the hex content octets if they are not a
// valid encoding.
func (o ObjectIdentifier) String() string {
	s, err := oid.Decode(o)
	if err != nil {
		return "invalid:" + hex.EncodeToString(o)
	}
	return s
}

func (o ObjectIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// Version ::= INTEGER {v1(0), v2(1), v3(2)}
type Version uint

func (v Version) String() string {
	if v > 2 {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return fmt.Sprintf("v%d(%d)", v+1, v)
}

// CertificateSerialNumber  ::=  INTEGER
type CertificateSerialNumber []byte

func (serial CertificateSerialNumber) String() string {
	return hex.EncodeToString(serial)
}

func (serial CertificateSerialNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(serial.String())
}
