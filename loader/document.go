package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/robinvdvleuten/sankey/errors"
)

// Encodings supported by Document.Encode.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Document is the serializable form of a loaded file, shared by the export
// command and the web preview. Field names follow the json tags for every
// encoding.
type Document struct {
	Filename    string             `json:"filename"`
	Header      string             `json:"header,omitempty"`
	Records     []RecordJSON       `json:"records"`
	Nodes       []string           `json:"nodes"`
	Diagnostics []errors.ErrorJSON `json:"diagnostics"`
}

// RecordJSON is one flow record. Weight keeps the exact decimal text;
// Value is the float view for layout code.
type RecordJSON struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight string  `json:"weight"`
	Value  float64 `json:"value"`
	Line   int     `json:"line"`
	Column int     `json:"column"`
}

// Document converts the result into its serializable form. Nodes lists every
// node name in order of first appearance.
func (r *Result) Document() *Document {
	doc := &Document{
		Filename:    r.Filename,
		Header:      r.Header,
		Records:     make([]RecordJSON, 0, len(r.Records)),
		Nodes:       []string{},
		Diagnostics: errors.NewJSONFormatter().FormatAllToSlice(r.Errors()),
	}

	seen := make(map[string]struct{})
	addNode := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		doc.Nodes = append(doc.Nodes, name)
	}

	for _, rec := range r.Records {
		doc.Records = append(doc.Records, RecordJSON{
			Source: rec.Source,
			Target: rec.Target,
			Weight: rec.Weight.String(),
			Value:  rec.Float(),
			Line:   rec.Pos.Line,
			Column: rec.Pos.Column,
		})
		addNode(rec.Source)
		addNode(rec.Target)
	}

	return doc
}

// Encode writes the document to w in the given format.
func (d *Document) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(d)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// DecodeDocument reads a document written by Encode.
func DecodeDocument(r io.Reader, format string) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return doc, nil
}
