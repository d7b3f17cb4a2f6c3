package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Format is a document format recognized from the file name suffix.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrUnsupportedFormat is returned for file names whose suffix is neither .pdf nor .docx.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatFromFileName maps a file name to its declared format. The match is case-insensitive.
func FormatFromFileName(fileName string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf":
		return FormatPDF, true
	case ".docx":
		return FormatDOCX, true
	default:
		return "", false
	}
}

// Parser extracts plain text from uploaded documents.
type Parser struct{}

// Parse implements the document parser used by the screening service.
func (Parser) Parse(ctx context.Context, data []byte, fileName string) (string, error) {
	return ParseDocument(ctx, data, fileName)
}

// ParseDocument extracts plain text using the format declared by fileName's suffix.
// Unknown suffixes return ErrUnsupportedFormat without reading data.
func ParseDocument(ctx context.Context, data []byte, fileName string) (string, error) {
	format, ok := FormatFromFileName(fileName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
	text, err := ExtractTextFromBytes(ctx, data, format)
	if err != nil {
		return "", fmt.Errorf("extract text file=%s format=%s: %w", fileName, format, err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory payload of the given format.
func ExtractTextFromBytes(ctx context.Context, data []byte, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw))
}

// stripDocxXML keeps character data and turns paragraph, break and tab elements into whitespace.
func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
