// Package csv parses delimited text with a header row into a dataset.Dataset
// and writes a dataset back out in the same format.
//
// Parsing is strict: every record must have as many fields as the header, and
// any malformed quoting aborts the parse. Nothing is skipped silently because
// a dropped row would never reach either the sink or the fallback snapshot.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"ingest/internal/dataset"
)

var (
	// ErrEmpty is returned when the input has no header row.
	ErrEmpty = errors.New("csv: input is empty")
	// ErrNotUTF8 is returned when UTF-8 input contains invalid byte sequences.
	ErrNotUTF8 = errors.New("csv: input is not valid UTF-8")
)

// Options configures the parser. The zero value parses comma-separated UTF-8.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Encoding names the source character set using WHATWG labels
	// (e.g. "utf-8", "windows-1250", "latin1"). Empty means UTF-8.
	Encoding string
}

// Parser parses delimited input according to Options.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads all of r, decodes it, and returns the typed dataset.
func (p *Parser) Parse(r io.Reader) (*dataset.Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("csv: read: %w", err)
	}
	text, err := p.decode(raw)
	if err != nil {
		return nil, err
	}
	// The BOM must go before the reader sees it or a quoted first header
	// cell is rejected as a bare quote.
	text = bytes.TrimPrefix(text, []byte(utf8BOM))

	cr := csv.NewReader(bytes.NewReader(text))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Zero means "same width as the first record", i.e. the header.
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	header = normalizeHeaders(StripHeaderBOM(header))

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		records = append(records, rec)
	}

	return dataset.FromText(header, records)
}

// decode converts raw bytes to UTF-8 according to Options.Encoding. UTF-8
// input is validated rather than transformed.
func (p *Parser) decode(raw []byte) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(p.opt.Encoding))
	if name == "" || name == "utf-8" || name == "utf8" {
		if !utf8.Valid(raw) {
			return nil, ErrNotUTF8
		}
		return raw, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("csv: unknown encoding %q: %w", p.opt.Encoding, err)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("csv: decode %s: %w", name, err)
	}
	return out, nil
}

// normalizeHeaders trims surrounding whitespace and names blank header cells
// col_<index>. A repeated name gets a numeric suffix (a, a.1, a.2) that does
// not collide with any other header.
func normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	taken := make(map[string]bool, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
		taken[c] = true
	}

	seen := make(map[string]int, len(h))
	for i, c := range res {
		n := seen[c]
		seen[c] = n + 1
		if n == 0 {
			continue
		}
		name := fmt.Sprintf("%s.%d", c, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", c, n)
		}
		seen[c] = n + 1
		taken[name] = true
		res[i] = name
	}
	return res
}
