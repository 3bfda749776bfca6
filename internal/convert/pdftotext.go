package convert

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText converter. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// Convert runs pdftotext -layout on a PDF and returns stdout. Other formats
// are rejected with ErrUnsupportedFormat.
func (p *PdfToText) Convert(ctx context.Context, path, mimeType string) (string, error) {
	if BaseMIME(mimeType) != "application/pdf" {
		return "", eris.Wrapf(ErrUnsupportedFormat, "convert: pdftotext cannot read %s", mimeType)
	}

	cmd := exec.CommandContext(ctx, p.binPath, "-layout", "-enc", "UTF-8", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "convert: pdftotext failed for %s: %s", path, stderr.String())
	}

	return stdout.String(), nil
}
