package x509debug

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certcat/certext/oid"
)

var (
	// pkcs-9-at-extensionRequest, RFC 2985 5.4.2
	oidExtensionRequest = mustEncodeOID("1.2.840.113549.1.9.14")
	// Microsoft's older equivalent, still emitted by some enrollment clients.
	oidMSExtensionRequest = mustEncodeOID("1.3.6.1.4.1.311.2.1.14")
)

func mustEncodeOID(dotted string) ObjectIdentifier {
	content, err := oid.Encode(dotted)
	if err != nil {
		panic(err)
	}
	return content
}

//	CertificationRequest ::= SEQUENCE {
//	  certificationRequestInfo CertificationRequestInfo,
//	  signatureAlgorithm       AlgorithmIdentifier{{ SignatureAlgorithms }},
//	  signature                BIT STRING }
type CertificateRequest struct {
	CertificationRequestInfo CertificationRequestInfo
	SignatureAlgorithm       AlgorithmIdentifier
}

func ParseCertificateRequest(der *cryptobyte.String) (*CertificateRequest, error) {
	var request cryptobyte.String
	if !der.ReadASN1(&request, asn1.SEQUENCE) {
		return nil, errors.New("failed to read CertificationRequest Sequence")
	}

	var info cryptobyte.String
	if !request.ReadASN1(&info, asn1.SEQUENCE) {
		return nil, errors.New("failed to read certificationRequestInfo")
	}

	signatureAlgorithm, err := ParseAlgorithmIdentifier(&request)
	if err != nil {
		return nil, fmt.Errorf("parsing signatureAlgorithm: %w", err)
	}

	if !request.SkipASN1(asn1.BIT_STRING) {
		return nil, errors.New("failed to read signature")
	}

	if !request.Empty() {
		return nil, errors.New("extra data after certification request")
	}

	parsedInfo, err := ParseCertificationRequestInfo(&info)
	if err != nil {
		return nil, err
	}

	return &CertificateRequest{
		CertificationRequestInfo: parsedInfo,
		SignatureAlgorithm:       signatureAlgorithm,
	}, nil
}

//	CertificationRequestInfo ::= SEQUENCE {
//	  version       INTEGER { v1(0) } (v1,...),
//	  subject       Name,
//	  subjectPKInfo SubjectPublicKeyInfo{{ PKInfoAlgorithms }},
//	  attributes    [0] Attributes{{ CRIAttributes }} }
//
// Extensions are taken from the extensionRequest attribute, falling back to
// the Microsoft variant when there is none.
type CertificationRequestInfo struct {
	Version    Version
	Attributes []Attribute
	Extensions Extensions
}

func ParseCertificationRequestInfo(der *cryptobyte.String) (CertificationRequestInfo, error) {
	var version uint
	if !der.ReadASN1Integer(&version) {
		return CertificationRequestInfo{}, errors.New("reading version")
	}

	if !der.SkipASN1(asn1.SEQUENCE) {
		return CertificationRequestInfo{}, errors.New("failed to read subject")
	}
	if !der.SkipASN1(asn1.SEQUENCE) {
		return CertificationRequestInfo{}, errors.New("failed to read subjectPKInfo")
	}

	// Attributes are mandatory, but some encoders drop an empty set.
	var attributes []Attribute
	if der.PeekASN1Tag(asn1.Tag(0).Constructed().ContextSpecific()) {
		var err error
		attributes, err = ParseSequenceOf[Attribute](der, asn1.Tag(0).Constructed().ContextSpecific())
		if err != nil {
			return CertificationRequestInfo{}, fmt.Errorf("parsing attributes: %w", err)
		}
	}

	if !der.Empty() {
		return CertificationRequestInfo{}, errors.New("extra data after certificationRequestInfo")
	}

	extensions, err := requestedExtensions(attributes)
	if err != nil {
		return CertificationRequestInfo{}, err
	}

	return CertificationRequestInfo{
		Version:    Version(version),
		Attributes: attributes,
		Extensions: extensions,
	}, nil
}

func requestedExtensions(attributes []Attribute) (Extensions, error) {
	for _, want := range []ObjectIdentifier{oidExtensionRequest, oidMSExtensionRequest} {
		for _, attribute := range attributes {
			if !bytes.Equal(attribute.Type, want) {
				continue
			}
			if len(attribute.Values) != 1 {
				return nil, fmt.Errorf("attribute %s has %d values, want 1", attribute.Type, len(attribute.Values))
			}
			value := cryptobyte.String(attribute.Values[0])
			extensions, err := parseExtensionsSequence(&value)
			if err != nil {
				return nil, fmt.Errorf("parsing requested extensions: %w", err)
			}
			return extensions, nil
		}
	}
	return nil, nil
}

//	Attribute ::= SEQUENCE {
//	  type   OBJECT IDENTIFIER,
//	  values SET SIZE(1..MAX) OF AttributeValue }
//
// Values holds each AttributeValue as a complete DER element.
type Attribute struct {
	Type   ObjectIdentifier
	Values [][]byte
}

func (a *Attribute) Parse(der *cryptobyte.String) error {
	var attribute cryptobyte.String
	if !der.ReadASN1(&attribute, asn1.SEQUENCE) {
		return errors.New("failed to read Attribute")
	}

	attributeType, err := ParseObjectIdentifier(&attribute)
	if err != nil {
		return fmt.Errorf("parsing Attribute type: %w", err)
	}

	values, err := ParseElements(&attribute, asn1.SET)
	if err != nil {
		return fmt.Errorf("parsing Attribute %s values: %w", attributeType, err)
	}

	if !attribute.Empty() {
		return fmt.Errorf("extra data after Attribute %s", attributeType)
	}

	a.Type = attributeType
	a.Values = values
	return nil
}
