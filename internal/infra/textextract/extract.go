// Package textextract turns uploaded transcripts into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var ErrUnsupported = errors.New("unsupported file type, use .txt or .docx")

const documentPart = "word/document.xml"

// FromFile picks the extractor by file extension.
func FromFile(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return plain(data)
	case ".docx":
		return docx(data)
	default:
		return "", ErrUnsupported
	}
}

func plain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return string(data), nil
}

// docx reads the raw text of the main document part. Paragraphs and line
// breaks become newlines, tabs stay tabs. Formatting is dropped.
func docx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("read docx: %s missing", documentPart)
	}
	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
