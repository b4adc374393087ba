package source

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// xlsxSource serves the sheets of one workbook as tables. Cells go through the
// same inference as CSV; date-formatted cells therefore read as their serial numbers.
type xlsxSource struct {
	path       string
	book       *workbook
	nullTokens []string
}

func openXLSX(_ context.Context, cfg Config) (Source, error) {
	book, err := openWorkbook(cfg.DSN)
	if err != nil {
		return nil, unavailable("xlsx", err)
	}
	return &xlsxSource{path: cfg.DSN, book: book, nullTokens: cfg.NullTokens}, nil
}

func (s *xlsxSource) Tables(context.Context) ([]string, error) {
	out := make([]string, len(s.book.sheets))
	for i, sh := range s.book.sheets {
		out[i] = sh.name
	}
	return out, nil
}

func (s *xlsxSource) Snapshot(_ context.Context, table string) (*quality.Snapshot, error) {
	cells, ok, err := s.book.read(table)
	if err != nil {
		return nil, unavailable("xlsx", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, table)
	}
	snap, err := cells.snapshot(s.nullTokens)
	if err != nil {
		return nil, unavailable("xlsx", fmt.Errorf("sheet %s: %w", table, err))
	}
	return snap, nil
}

func (s *xlsxSource) Close() error { return nil }

type sheetRef struct {
	name string
	path string // zip entry
}

type workbook struct {
	contents map[string][]byte // xl/ parts by zip entry name
	sheets   []sheetRef
	shared   []string
}

func openWorkbook(name string) (*workbook, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	contents := map[string][]byte{}
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "xl/") {
			continue
		}
		if ext := path.Ext(f.Name); ext != ".xml" && ext != ".rels" {
			continue
		}
		b, err := readZipEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		contents[f.Name] = b
	}

	var book struct {
		Sheets []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheets>sheet"`
	}
	if err := xml.Unmarshal(contents["xl/workbook.xml"], &book); err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if b := contents["xl/_rels/workbook.xml.rels"]; len(b) > 0 {
		if err := xml.Unmarshal(b, &rels); err != nil {
			return nil, fmt.Errorf("parse relationships: %w", err)
		}
	}
	w := &workbook{contents: contents}
	targets := map[string]string{}
	for _, r := range rels.Items {
		targets[r.ID] = normalizeRelPath(r.Target)
	}
	for i, sh := range book.Sheets {
		target, ok := targets[sh.RID]
		if !ok {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1)
		}
		w.sheets = append(w.sheets, sheetRef{name: sh.Name, path: target})
	}
	w.shared = parseSharedStrings(contents["xl/sharedStrings.xml"])
	return w, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// normalizeRelPath turns a relationship target ("worksheets/sheet1.xml" or
// "/xl/worksheets/sheet1.xml") into a zip entry name.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}

// read returns the named sheet with its first row as header.
func (w *workbook) read(sheet string) (cellTable, bool, error) {
	for _, sh := range w.sheets {
		if sh.name != sheet {
			continue
		}
		data, ok := w.contents[sh.path]
		if !ok {
			return cellTable{}, true, fmt.Errorf("sheet %s: missing part %s", sheet, sh.path)
		}
		rows, err := readSheetRows(data, w.shared)
		if err != nil {
			return cellTable{}, true, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			return cellTable{}, true, nil
		}
		return cellTable{header: rows[0], records: rows[1:]}, true, nil
	}
	return cellTable{}, false, nil
}

// parseSharedStrings concatenates the text runs of each <si> entry.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		out []string
		buf strings.Builder
		inT bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			case "rPh":
				// phonetic hints are not part of the cell text
				_ = dec.Skip()
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// readSheetRows decodes every <row> of a worksheet into strings, placing
// cells by their reference so gaps become empty strings.
func readSheetRows(data []byte, shared []string) ([][]string, error) {
	type cell struct {
		Ref    string `xml:"r,attr"`
		Type   string `xml:"t,attr"`
		V      string `xml:"v"`
		Inline string `xml:"is>t"`
	}
	type row struct {
		Cells []cell `xml:"c"`
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out [][]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var r row
		if err := dec.DecodeElement(&r, &se); err != nil {
			return nil, err
		}
		var vals []string
		for i, c := range r.Cells {
			idx := i
			if c.Ref != "" {
				idx = colIndexFromRef(c.Ref)
			}
			if idx < 0 || idx >= maxSheetColumns {
				continue
			}
			for len(vals) <= idx {
				vals = append(vals, "")
			}
			vals[idx] = cellText(c.Type, c.V, c.Inline, shared)
		}
		out = append(out, vals)
	}
}

func cellText(typ, v, inline string, shared []string) string {
	switch typ {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return inline
	case "b":
		if v == "1" {
			return "TRUE"
		}
		return "FALSE"
	}
	return v
}

// maxSheetColumns is the column count of an Excel worksheet (A..XFD).
const maxSheetColumns = 16384

// colIndexFromRef converts a cell reference like "C12" to a 0-based column
// index. References past XFD yield -1.
func colIndexFromRef(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
		if idx > maxSheetColumns {
			return -1
		}
	}
	return idx - 1
}
