package x509debug

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"

	"github.com/certcat/certext/extensions"
	"github.com/certcat/certext/internal/testcerts"
)

func TestParseCertificateRequest(t *testing.T) {
	der := testcerts.Request(t,
		pkix.Extension{Id: oidPrivate, Critical: true, Value: []byte("hello")},
		pkix.Extension{Id: oidBasicConstraints, Value: []byte{0x30, 0x00}},
	)

	input := cryptobyte.String(der)
	csr, err := ParseCertificateRequest(&input)
	require.NoError(t, err)

	info := csr.CertificationRequestInfo
	assert.Equal(t, "v1(0)", info.Version.String())
	assert.Equal(t, "1.2.840.10045.4.3.2", csr.SignatureAlgorithm.Algorithm.String())
	require.Len(t, info.Attributes, 1)
	assert.Equal(t, "1.2.840.113549.1.9.14", info.Attributes[0].Type.String())

	got, err := extensions.Extract(info.Extensions)
	require.NoError(t, err)

	parsed, err := x509.ParseCertificateRequest(der)
	require.NoError(t, err)
	require.Len(t, got, len(parsed.Extensions))
	for _, ext := range parsed.Extensions {
		assert.Equal(t, extensions.Extension{Critical: ext.Critical, Value: ext.Value}, got[ext.Id.String()])
	}
}

func TestParseCertificateRequestWithoutExtensions(t *testing.T) {
	input := cryptobyte.String(testcerts.Request(t))
	csr, err := ParseCertificateRequest(&input)
	require.NoError(t, err)
	assert.Empty(t, csr.CertificationRequestInfo.Attributes)
	assert.Nil(t, csr.CertificationRequestInfo.Extensions)
}

func TestParseCertificationRequestInfoMicrosoftAttribute(t *testing.T) {
	der := testcerts.RequestInfoWithAttribute(t, oidMSExtensionRequest,
		testcerts.RawExtension{OID: mustEncode(t, "2.5.29.15"), Critical: true, Value: []byte{0x03, 0x02, 0x07, 0x80}},
	)

	input := cryptobyte.String(der)
	info, err := ParseCertificationRequestInfo(&input)
	require.NoError(t, err)

	got, err := extensions.Extract(info.Extensions)
	require.NoError(t, err)
	assert.Equal(t, extensions.Map{
		"2.5.29.15": {Critical: true, Value: []byte{0x03, 0x02, 0x07, 0x80}},
	}, got)
}

func TestParseCertificationRequestInfoOtherAttribute(t *testing.T) {
	der := testcerts.RequestInfoWithAttribute(t, mustEncode(t, "1.2.840.113549.1.9.7"),
		testcerts.RawExtension{OID: mustEncode(t, "2.5.29.15"), Value: []byte{0x03, 0x02, 0x07, 0x80}},
	)

	input := cryptobyte.String(der)
	info, err := ParseCertificationRequestInfo(&input)
	require.NoError(t, err)
	require.Len(t, info.Attributes, 1)
	assert.Len(t, info.Attributes[0].Values, 1)
	assert.Nil(t, info.Extensions)
}

func TestParseCertificateRequestErrors(t *testing.T) {
	input := cryptobyte.String(testcerts.Certificate(t))
	_, err := ParseCertificateRequest(&input)
	assert.Error(t, err)

	input = cryptobyte.String{0x30, 0x00}
	_, err = ParseCertificateRequest(&input)
	assert.ErrorContains(t, err, "certificationRequestInfo")
}
