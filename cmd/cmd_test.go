package cmd

import (
	"bytes"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certcat/certext/extensions"
	"github.com/certcat/certext/internal/testcerts"
	"github.com/certcat/certext/oid"
)

// Note: tests do not use t.Parallel() because the commands share global
// flag state.

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

var testExtensions = []pkix.Extension{
	{Id: asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 1}, Critical: true, Value: []byte("hello")},
	{Id: asn1.ObjectIdentifier{2, 5, 29, 19}, Value: []byte{0x30, 0x00}},
}

func decodeResults(t *testing.T, out string) []result {
	t.Helper()
	var results []result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	return results
}

func TestExtensionsJSON(t *testing.T) {
	cert := testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...))
	csr := testcerts.PEM("CERTIFICATE REQUEST", testcerts.Request(t, testExtensions[1]))
	path := writeFile(t, "bundle.pem", append(cert, csr...))

	out, _, err := run(t, "extensions", path)
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 2)

	assert.Equal(t, path, results[0].File)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "certificate", string(results[0].Kind))
	assert.Equal(t, "1.2.840.10045.4.3.2", results[0].SignatureAlgorithm)
	assert.Equal(t, extensions.Extension{Critical: true, Value: []byte("hello")}, results[0].Extensions["1.3.6.1.4.1.99999.1"])
	assert.Empty(t, results[0].Names)

	assert.Equal(t, "csr", string(results[1].Kind))
	assert.Equal(t, extensions.Map{"2.5.29.19": {Value: []byte{0x30, 0x00}}}, results[1].Extensions)

	// Values are base64 on the wire.
	assert.Contains(t, out, `"value": "aGVsbG8="`)
}

func TestExtensionsNames(t *testing.T) {
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...)))

	out, _, err := run(t, "extensions", "--names", "short", path)
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, "ecdsa-with-SHA256", results[0].SignatureAlgorithm)
	assert.Equal(t, map[string]string{"2.5.29.19": "basicConstraints"}, results[0].Names)
	// Keys stay dotted.
	assert.Contains(t, results[0].Extensions, "2.5.29.19")

	out, _, err = run(t, "extensions", "--names", "long", path)
	require.NoError(t, err)
	results = decodeResults(t, out)
	assert.Equal(t, map[string]string{"2.5.29.19": "X509v3 Basic Constraints"}, results[0].Names)
}

func TestExtensionsBackends(t *testing.T) {
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...)))

	var want []result
	for _, backend := range []string{"der", "stdlib", "zcrypto"} {
		out, _, err := run(t, "extensions", "--backend", backend, "--names", "short", path)
		require.NoError(t, err, backend)
		got := decodeResults(t, out)
		if want == nil {
			want = got
		}
		assert.Equal(t, want, got, backend)
	}

	_, _, err := run(t, "extensions", "--backend", "openssl", path)
	assert.ErrorContains(t, err, "unknown backend")
}

func TestExtensionsDER(t *testing.T) {
	path := writeFile(t, "req.der", testcerts.Request(t, testExtensions...))

	out, _, err := run(t, "extensions", "--format", "der", "--kind", "csr", path)
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Extensions, 2)

	// Parsed as a certificate, the request is rejected.
	_, _, err = run(t, "extensions", "--format", "der", path)
	assert.Error(t, err)
}

func TestExtensionsYAML(t *testing.T) {
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...)))

	out, _, err := run(t, "extensions", "-o", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: certificate")
	assert.Contains(t, out, "1.3.6.1.4.1.99999.1:")
	assert.Contains(t, out, "critical: true")
	assert.Contains(t, out, "aGVsbG8=")
}

func TestExtensionsTable(t *testing.T) {
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...)))

	out, _, err := run(t, "extensions", "-o", "table", "--names", "short", path)
	require.NoError(t, err)
	assert.Contains(t, out, "basicConstraints")
	assert.Contains(t, out, "68656c6c6f")
	// Sorted numerically: 1.3... before 2.5...
	assert.Less(t, strings.Index(out, "1.3.6.1.4.1.99999.1"), strings.Index(out, "2.5.29.19"))
}

func TestExtensionsStrict(t *testing.T) {
	sanOID, err := oid.Encode("2.5.29.17")
	require.NoError(t, err)
	der := testcerts.CertificateWithRawExtensions(t,
		testcerts.RawExtension{OID: sanOID, Value: []byte("first")},
		testcerts.RawExtension{OID: sanOID, Value: []byte("second")},
	)
	path := writeFile(t, "dup.pem", testcerts.PEM("CERTIFICATE", der))

	out, _, err := run(t, "extensions", path)
	require.NoError(t, err)
	results := decodeResults(t, out)
	assert.Equal(t, extensions.Map{"2.5.29.17": {Value: []byte("second")}}, results[0].Extensions)

	_, _, err = run(t, "extensions", "--strict", path)
	var dupErr *extensions.DuplicateError
	assert.ErrorAs(t, err, &dupErr)
}

func TestExtensionsErrors(t *testing.T) {
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t)))
	key := writeFile(t, "key.pem", testcerts.PEM("PRIVATE KEY", []byte{0x30, 0x00}))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", []string{"extensions"}, "requires at least 1 arg"},
		{"missing file", []string{"extensions", filepath.Join(t.TempDir(), "nope.pem")}, "no such file"},
		{"no blocks", []string{"extensions", key}, "no certificate or certificate request found"},
		{"bad format", []string{"extensions", "--format", "p12", path}, "unknown format"},
		{"bad kind", []string{"extensions", "--kind", "crl", path}, "unknown kind"},
		{"bad output", []string{"extensions", "-o", "xml", path}, "unknown output"},
		{"bad names", []string{"extensions", "--names", "medium", path}, "unknown names mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := run(t, "normalize", "CN", "2.5.29.17", "unknownName")
	require.NoError(t, err)
	assert.Equal(t, "commonName\nX509v3 Subject Alternative Name\nunknownName\n", out)

	out, _, err = run(t, "normalize", "--short", "commonName", "2.5.29.17")
	require.NoError(t, err)
	assert.Equal(t, "CN\nsubjectAltName\n", out)
}

func TestOIDCommands(t *testing.T) {
	out, _, err := run(t, "oid", "decode", "2a864886f70d", "55:04:03")
	require.NoError(t, err)
	assert.Equal(t, "1.2.840.113549\n2.5.4.3\n", out)

	out, _, err = run(t, "oid", "decode", "--element", "0603550403")
	require.NoError(t, err)
	assert.Equal(t, "2.5.4.3\n", out)

	out, _, err = run(t, "oid", "encode", "1.2.840.113549", "2.999.3")
	require.NoError(t, err)
	assert.Equal(t, "2a864886f70d\n883703\n", out)

	out, _, err = run(t, "oid", "encode", "-e", "2.5.4.3")
	require.NoError(t, err)
	assert.Equal(t, "0603550403\n", out)

	_, _, err = run(t, "oid", "decode", "86")
	var encErr *oid.EncodingError
	assert.ErrorAs(t, err, &encErr)

	_, _, err = run(t, "oid", "decode", "zz")
	assert.Error(t, err)

	_, _, err = run(t, "oid", "encode", "1.40")
	var synErr *oid.SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func TestConfig(t *testing.T) {
	tables := writeFile(t, "names.yaml", []byte(`
short:
  "1.3.6.1.4.1.99999.1": example
  example: example
long:
  "1.3.6.1.4.1.99999.1": Example Extension
  Example Extension: Example Extension
`))
	conf := writeFile(t, "certext.yaml", []byte(`
log:
  level: 7
  textFormat: true
names: `+tables+`
backend: stdlib
`))
	path := writeFile(t, "cert.pem", testcerts.PEM("CERTIFICATE", testcerts.Certificate(t, testExtensions...)))

	out, stderr, err := run(t, "--config", conf, "extensions", "--names", "short", path)
	require.NoError(t, err)
	results := decodeResults(t, out)
	require.Len(t, results, 1)
	// The stdlib backend reports Go's spelling, which the replacement tables
	// do not know.
	assert.Equal(t, "ECDSA-SHA256", results[0].SignatureAlgorithm)
	assert.Equal(t, map[string]string{"1.3.6.1.4.1.99999.1": "example"}, results[0].Names)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "backend=stdlib")

	// Flags override the file.
	_, stderr, err = run(t, "--config", conf, "--log-level=-1", "normalize", "CN")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	// A file that leaves the level out logs no more than no file at all.
	quiet := writeFile(t, "quiet.yaml", []byte("backend: der\n"))
	_, stderr, err = run(t, "--config", quiet, "extensions", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	bad := writeFile(t, "bad.yaml", []byte("backend: der\nlevel: 7\n"))
	_, _, err = run(t, "--config", bad, "normalize", "CN")
	assert.ErrorContains(t, err, "level")
}
