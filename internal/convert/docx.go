package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// docxBodyLimit caps the uncompressed main part read from the archive.
	docxBodyLimit = 64 << 20
)

// readDocx returns the text of a DOCX file's main document part, one line per
// paragraph. Tables come out cell by cell in reading order.
func readDocx(ctx context.Context, path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", eris.Wrapf(ErrUnsupportedFormat, "convert: open docx %s: %v", path, err)
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", eris.Wrap(err, "convert: open word/document.xml")
		}
		defer rc.Close() //nolint:errcheck
		return docxText(ctx, io.LimitReader(rc, docxBodyLimit))
	}

	return "", eris.Wrapf(ErrUnsupportedFormat, "convert: %s has no word/document.xml", path)
}

func docxText(ctx context.Context, r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "convert: docx cancelled")
		}

		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrap(err, "convert: read docx xml")
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
			case "tc":
				b.WriteByte('\t')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
