// Package oid converts ASN.1 OBJECT IDENTIFIER values between their DER content
// octets and dotted-decimal text, as described in X.690 section 8.19.
//
// Unlike encoding/asn1 and cryptobyte's ReadASN1ObjectIdentifier, arcs are not
// limited to the size of an int: every arc is decoded with math/big.
package oid

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// EncodingError reports malformed OBJECT IDENTIFIER content octets.
type EncodingError struct {
	// Offset is the index into the content octets where decoding stopped.
	Offset int
	Msg    string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("oid: malformed encoding at offset %d: %s", e.Offset, e.Msg)
}

// SyntaxError reports a dotted-decimal string that is not a valid OID.
type SyntaxError struct {
	OID string
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("oid: invalid OID %q: %s", e.OID, e.Msg)
}

var (
	big2  = big.NewInt(2)
	big40 = big.NewInt(40)
	big80 = big.NewInt(80)
)

// Decode turns the content octets of an OBJECT IDENTIFIER (no tag or length
// prefix) into its dotted-decimal form.
func Decode(content []byte) (string, error) {
	if len(content) == 0 {
		return "", &EncodingError{Offset: 0, Msg: "empty content"}
	}

	s := cryptobyte.String(content)

	// The first subidentifier packs the first two arcs as arc0*40 + arc1.
	first, err := readSubidentifier(&s, len(content))
	if err != nil {
		return "", err
	}

	var ret strings.Builder
	switch {
	case first.Cmp(big40) < 0:
		ret.WriteString("0.")
		ret.WriteString(first.String())
	case first.Cmp(big80) < 0:
		ret.WriteString("1.")
		ret.WriteString(first.Sub(first, big40).String())
	default:
		ret.WriteString("2.")
		ret.WriteString(first.Sub(first, big80).String())
	}

	for !s.Empty() {
		arc, err := readSubidentifier(&s, len(content))
		if err != nil {
			return "", err
		}
		ret.WriteByte('.')
		ret.WriteString(arc.String())
	}

	return ret.String(), nil
}

// DecodeElement is Decode for a complete DER OBJECT IDENTIFIER element,
// including its tag and length octets.
func DecodeElement(der []byte) (string, error) {
	s := cryptobyte.String(der)
	var content cryptobyte.String
	if !s.ReadASN1(&content, asn1.OBJECT_IDENTIFIER) {
		return "", &EncodingError{Offset: 0, Msg: "failed to read OBJECT IDENTIFIER element"}
	}
	if !s.Empty() {
		return "", &EncodingError{Offset: len(der) - len(s), Msg: "trailing data after OBJECT IDENTIFIER element"}
	}
	return Decode(content)
}

// readSubidentifier reads one base-128 subidentifier. total is the length of
// the whole content, used to compute error offsets.
func readSubidentifier(s *cryptobyte.String, total int) (*big.Int, error) {
	start := total - len(*s)
	v := new(big.Int)
	digit := new(big.Int)
	for {
		var b uint8
		if !s.ReadUint8(&b) {
			return nil, &EncodingError{Offset: start, Msg: "truncated subidentifier"}
		}
		v.Lsh(v, 7)
		v.Or(v, digit.SetUint64(uint64(b&0x7f)))
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// Encode turns a dotted-decimal OID into the content octets of its DER
// encoding. It is the inverse of Decode.
func Encode(dotted string) ([]byte, error) {
	arcs, err := parseArcs(dotted)
	if err != nil {
		return nil, err
	}

	if len(arcs) < 2 {
		return nil, &SyntaxError{OID: dotted, Msg: "at least two arcs are required"}
	}
	switch arcs[0].Cmp(big2) {
	case 1:
		return nil, &SyntaxError{OID: dotted, Msg: "first arc must be 0, 1 or 2"}
	case -1:
		if arcs[1].Cmp(big40) >= 0 {
			return nil, &SyntaxError{OID: dotted, Msg: "second arc must be less than 40 under arcs 0 and 1"}
		}
	}

	first := new(big.Int).Mul(arcs[0], big40)
	first.Add(first, arcs[1])

	b := cryptobyte.NewBuilder(nil)
	addSubidentifier(b, first)
	for _, arc := range arcs[2:] {
		addSubidentifier(b, arc)
	}
	return b.Bytes()
}

// EncodeElement is Encode, returning the complete DER element with its tag and
// length octets.
func EncodeElement(dotted string) ([]byte, error) {
	content, err := Encode(dotted)
	if err != nil {
		return nil, err
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
		b.AddBytes(content)
	})
	return b.Bytes()
}

// parseArcs splits dotted into non-negative decimal arcs with no leading zeros.
func parseArcs(dotted string) ([]*big.Int, error) {
	if dotted == "" {
		return nil, &SyntaxError{OID: dotted, Msg: "empty string"}
	}

	parts := strings.Split(dotted, ".")
	arcs := make([]*big.Int, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, &SyntaxError{OID: dotted, Msg: fmt.Sprintf("arc %d is empty", i)}
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, &SyntaxError{OID: dotted, Msg: fmt.Sprintf("arc %d is not a decimal number", i)}
			}
		}
		if len(part) > 1 && part[0] == '0' {
			return nil, &SyntaxError{OID: dotted, Msg: fmt.Sprintf("arc %d has a leading zero", i)}
		}
		arc, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, &SyntaxError{OID: dotted, Msg: fmt.Sprintf("arc %d is not a decimal number", i)}
		}
		arcs = append(arcs, arc)
	}
	return arcs, nil
}

// addSubidentifier appends v in minimal base-128 form.
func addSubidentifier(b *cryptobyte.Builder, v *big.Int) {
	if v.Sign() == 0 {
		b.AddUint8(0)
		return
	}

	// Collect 7-bit groups least significant first.
	var groups []uint8
	rest := new(big.Int).Set(v)
	mask := big.NewInt(0x7f)
	group := new(big.Int)
	for rest.Sign() > 0 {
		groups = append(groups, uint8(group.And(rest, mask).Uint64()))
		rest.Rsh(rest, 7)
	}

	for i := len(groups) - 1; i > 0; i-- {
		b.AddUint8(groups[i] | 0x80)
	}
	b.AddUint8(groups[0])
}

// Compare orders two dotted-decimal OIDs arc by arc, numerically. A prefix
// sorts before any longer OID it prefixes. Arcs that are not decimal numbers
// fall back to string comparison, so Compare never fails.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareArc(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func compareArc(a, b string) int {
	x, okA := new(big.Int).SetString(a, 10)
	y, okB := new(big.Int).SetString(b, 10)
	if okA && okB {
		return x.Cmp(y)
	}
	return strings.Compare(a, b)
}
