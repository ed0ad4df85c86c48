package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxFormat struct{}

func (xlsxFormat) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// Rows reads the selected sheet. The first row is the header; short rows are padded.
func (xlsxFormat) Rows(path string, opt LoadOptions) ([]string, [][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := resolveSheet(zr, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (workbook %s)", err, filepath.Base(path))
	}
	shared := sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))
	rr := &sheetRows{dec: xml.NewDecoder(bytes.NewReader(zipEntry(zr, target))), shared: shared}
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, nil, nil
	}
	var rows [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if len(row) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, row)
			row = tmp
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

type sheetRef struct {
	Name    string
	SheetID int
	RID     string
}

// resolveSheet maps a sheet name or 1-based index to its zip entry.
func resolveSheet(zr *zip.Reader, name string, index int) (string, error) {
	sheets := workbookSheets(zipEntry(zr, "xl/workbook.xml"))
	rels := relationships(zipEntry(zr, "xl/_rels/workbook.xml.rels"))
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := rels[s.RID]; ok {
					return relPath(rel), nil
				}
			}
		}
		names := make([]string, len(sheets))
		for i, s := range sheets {
			names[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range sheets {
		if s.SheetID == index {
			if rel, ok := rels[s.RID]; ok {
				return relPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

func workbookSheets(data []byte) []sheetRef {
	var out []sheetRef
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s sheetRef
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID, _ = strconv.Atoi(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		out = append(out, s)
	}
}

func relationships(data []byte) map[string]string {
	out := map[string]string{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
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
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(se)
			}
		}
	}
}

type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

// Next returns the next <row> as a dense slice, placing cells by their A1 reference.
func (r *sheetRows) Next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				row = nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := columnIndex(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				return row, true
			}
		}
	}
}

func (r *sheetRows) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := tk.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx, err := strconv.Atoi(strings.TrimSpace(val))
				if err != nil || idx < 0 || idx >= len(r.shared) {
					return ""
				}
				return r.shared[idx]
			}
			return val
		}
	}
}

// columnIndex turns "C12" into 2. It returns -1 for an empty reference.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

func relPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
