package x509debug

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certcat/certext/extensions"
)

// Extensions  ::=  SEQUENCE SIZE (1..MAX) OF Extension
//
// Extensions implements extensions.Source.
type Extensions []Extension

var _ extensions.Source = Extensions(nil)

func (e Extensions) Len() int            { return len(e) }
func (e Extensions) Critical(i int) bool { return e[i].Critical }
func (e Extensions) Value(i int) []byte  { return e[i].ExtnValue }
func (e Extensions) OID(i int) []byte    { return e[i].ExtnID }

// ParseExtensions reads the optional [3] extensions field of a TBSCertificate.
func ParseExtensions(der *cryptobyte.String) (Extensions, error) {
	var field cryptobyte.String
	var hasExtensions bool
	var tag = asn1.Tag(3).Constructed().ContextSpecific()
	if !der.ReadOptionalASN1(&field, &hasExtensions, tag) {
		return nil, errors.New("failed to read Extensions")
	}

	if hasExtensions {
		return parseExtensionsSequence(&field)
	}

	return nil, nil
}

// parseExtensionsSequence reads a bare Extensions SEQUENCE, as found in a
// certificate's [3] field or a CSR extensionRequest attribute.
func parseExtensionsSequence(der *cryptobyte.String) (Extensions, error) {
	ret, err := ParseSequenceOf[Extension](der, asn1.SEQUENCE)
	if err != nil {
		return nil, err
	}
	if !der.Empty() {
		return nil, errors.New("extra data after Extensions")
	}
	return ret, nil
}

//	Extension  ::=  SEQUENCE  {
//	    extnID      OBJECT IDENTIFIER,
//	    critical    BOOLEAN DEFAULT FALSE,
//	    extnValue   OCTET STRING
//	                -- contains the DER encoding of an ASN.1 value
//	                -- corresponding to the extension type identified
//	                -- by extnID
//	    }
//
// ExtnValue is the content of the OCTET STRING, left undecoded.
type Extension struct {
	ExtnID    ObjectIdentifier
	Critical  bool
	ExtnValue []byte
}

func (e *Extension) Parse(der *cryptobyte.String) error {
	var extension cryptobyte.String
	if !der.ReadASN1(&extension, asn1.SEQUENCE) {
		return errors.New("failed to read Extension")
	}

	extnID, err := ParseObjectIdentifier(&extension)
	if err != nil {
		return fmt.Errorf("parsing Extension OID: %w", err)
	}

	critical := false
	if extension.PeekASN1Tag(asn1.BOOLEAN) {
		if !extension.ReadASN1Boolean(&critical) {
			return errors.New("failed to read critical bit")
		}
	}

	var extnValue cryptobyte.String
	if !extension.ReadASN1(&extnValue, asn1.OCTET_STRING) {
		return fmt.Errorf("failed to read extension %s value", extnID)
	}

	if !extension.Empty() {
		return fmt.Errorf("extra data after extension %s", extnID)
	}

	e.ExtnID = extnID
	e.Critical = critical
	e.ExtnValue = extnValue

	return nil
}
