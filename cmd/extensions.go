package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/certcat/certext/backends"
	"github.com/certcat/certext/extensions"
	"github.com/certcat/certext/files/pem"
)

// extensionsCmd represents the extensions command
var extensionsCmd = &cobra.Command{
	Args: cobra.MinimumNArgs(1),
	RunE: runExtensions,
	Use:  "extensions [flags] filenames...",
	Long: `Print the extensions of certificates and certificate requests.

Every certificate or request found in the input files is parsed with the
selected backend and its extensions are printed as a map from dotted OID to
the critical flag and the base64 extension value.`,
}

func init() {
	rootCmd.AddCommand(extensionsCmd)

	extensionsCmd.Flags().StringP("format", "f", "pem", "Input file format: pem or der")
	extensionsCmd.Flags().StringP("kind", "k", "cert", "What DER input holds: cert or csr")
	extensionsCmd.Flags().StringP("backend", "b", "", "Parsing backend (default from config, else der)")
	extensionsCmd.Flags().StringP("output", "o", "json", "Output format: json, yaml or table")
	extensionsCmd.Flags().Bool("strict", false, "Fail on repeated extension OIDs")
	extensionsCmd.Flags().String("names", "none", "Annotate OIDs with short, long or no names")
}

// result is the extensions of one object found in an input file.
type result struct {
	File               string            `json:"file" yaml:"file"`
	Index              int               `json:"index" yaml:"index"`
	Kind               pem.Kind          `json:"kind" yaml:"kind"`
	SignatureAlgorithm string            `json:"signatureAlgorithm" yaml:"signatureAlgorithm"`
	Extensions         extensions.Map    `json:"extensions" yaml:"extensions"`
	Names              map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
}

var kinds = map[string]pem.Kind{
	"cert": pem.Certificate,
	"csr":  pem.CertificateRequest,
}

func runExtensions(cmd *cobra.Command, files []string) error {
	e := getEnv(cmd)
	flags := cmd.Flags()

	format, _ := flags.GetString("format")
	kindName, _ := flags.GetString("kind")
	backendName, _ := flags.GetString("backend")
	output, _ := flags.GetString("output")
	strict, _ := flags.GetBool("strict")
	nameMode, _ := flags.GetString("names")

	kind, ok := kinds[kindName]
	if !ok {
		return fmt.Errorf("unknown kind %q, want cert or csr", kindName)
	}
	switch nameMode {
	case "short", "long", "none":
	default:
		return fmt.Errorf("unknown names mode %q, want short, long or none", nameMode)
	}
	if backendName == "" {
		backendName = e.backend
	}
	backend, err := backends.Get(backendName)
	if err != nil {
		return err
	}

	extract := extensions.Extract
	if strict {
		extract = extensions.ExtractStrict
	}

	var results []result
	for _, file := range files {
		read, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		var blocks []pem.Block
		switch format {
		case "pem", "PEM":
			blocks, err = pem.LoadAll(read)
		case "der", "DER":
			blocks, err = pem.LoadDER(read, kind)
		default:
			return fmt.Errorf("unknown format %q, want pem or der", format)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		for i, block := range blocks {
			e.logger.Debug("opening block", "file", file, "index", i, "kind", block.Kind, "backend", backend.Name())

			obj, err := backend.Open(block)
			if err != nil {
				return fmt.Errorf("%s: %s %d: %w", file, block.Kind, i, err)
			}
			exts, err := extract(obj.Extensions)
			if err != nil {
				return fmt.Errorf("%s: %s %d: %w", file, block.Kind, i, err)
			}

			r := result{
				File:               file,
				Index:              i,
				Kind:               obj.Kind,
				SignatureAlgorithm: obj.SignatureAlgorithm,
				Extensions:         exts,
			}
			if nameMode != "none" {
				short := nameMode == "short"
				r.SignatureAlgorithm = e.names.Normalize(r.SignatureAlgorithm, short)
				r.Names = make(map[string]string)
				for id := range exts {
					if name := e.names.Normalize(id, short); name != id {
						r.Names[id] = name
					}
				}
			}
			results = append(results, r)
		}
	}

	e.logger.Info("extracted extensions", "files", len(files), "objects", len(results))
	return writeResults(cmd.OutOrStdout(), output, results)
}

func writeResults(w io.Writer, output string, results []result) error {
	switch output {
	case "json":
		d, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(d))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return writeTable(w, results)
	default:
		return fmt.Errorf("unknown output %q, want json, yaml or table", output)
	}
}

func writeTable(w io.Writer, results []result) error {
	table := newExtensionsTable(w)
	table.Header([]string{"SOURCE", "OID", "NAME", "CRITICAL", "VALUE"})

	var data [][]string
	total := 0
	for _, r := range results {
		source := r.File + "#" + strconv.Itoa(r.Index)
		for _, id := range r.Extensions.OIDs() {
			ext := r.Extensions[id]
			name := r.Names[id]
			if name == "" {
				name = "-"
			}
			data = append(data, []string{
				source,
				id,
				name,
				strconv.FormatBool(ext.Critical),
				hex.EncodeToString(ext.Value),
			})
			total++
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	table.Footer([]string{"", "", "", "Total", strconv.Itoa(total)})
	return table.Render()
}
