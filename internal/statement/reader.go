package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// readPages loads the raw file into pages of string rows. A CSV file
// is a single page; an XLSX workbook yields one page per sheet.
func readPages(r io.Reader, format FormatSettings) ([][][]string, error) {
	switch format.Format {
	case FormatCSV:
		return readCSV(r, format)
	case FormatXLSX:
		return readXLSX(r)
	case FormatPDF:
		return nil, fmt.Errorf("pdf statements are not supported by the built-in reader")
	default:
		return nil, fmt.Errorf("unknown statement format %q", format.Format)
	}
}

func readCSV(r io.Reader, format FormatSettings) ([][][]string, error) {
	enc, err := encodingByName(format.Encoding)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if format.Separator != "" {
		runes := []rune(format.Separator)
		if len(runes) != 1 {
			return nil, fmt.Errorf("csv separator must be a single character, got %q", format.Separator)
		}
		cr.Comma = runes[0]
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv statement: %w", err)
	}
	return [][][]string{rows}, nil
}

func readXLSX(r io.Reader) ([][][]string, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading xlsx statement: %w", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx statement: %w", err)
	}
	defer f.Close()

	var pages [][][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading xlsx sheet %q: %w", sheet, err)
		}
		pages = append(pages, rows)
	}
	return pages, nil
}

// encodingByName resolves the handful of encodings bank exports
// actually use. UTF-8 needs no decoder and returns nil.
func encodingByName(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "koi8-r":
		return charmap.KOI8R, nil
	default:
		return nil, fmt.Errorf("unsupported statement encoding %q", name)
	}
}
