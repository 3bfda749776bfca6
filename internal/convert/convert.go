// Package convert turns binary documents into plain text or markdown before
// extraction.
package convert

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for MIME types no converter handles.
var ErrUnsupportedFormat = eris.New("unsupported document format")

// Converter extracts text content from a local file.
type Converter interface {
	Convert(ctx context.Context, path, mimeType string) (string, error)
}

// Options selects the document converter.
type Options struct {
	Provider      string
	PdfToTextPath string
	MistralKey    string
	MistralModel  string
}

// New creates a Router whose binary formats go to the configured provider.
func New(opts Options) (*Router, error) {
	var binary Converter
	switch opts.Provider {
	case "local", "":
		binary = NewPdfToText(opts.PdfToTextPath)
	case "mistral":
		if opts.MistralKey == "" {
			return nil, eris.New("convert: mistral provider requires mistral_api_key")
		}
		binary = NewMistralOCR(opts.MistralKey, opts.MistralModel)
	default:
		return nil, eris.Errorf("convert: unknown provider %q", opts.Provider)
	}
	return NewRouter(binary), nil
}

// Router reads text and DOCX formats directly and hands everything else to
// the binary converter.
type Router struct {
	binary Converter
}

// NewRouter creates a Router.
func NewRouter(binary Converter) *Router {
	return &Router{binary: binary}
}

// Convert implements Converter.
func (r *Router) Convert(ctx context.Context, path, mimeType string) (string, error) {
	base := BaseMIME(mimeType)
	var (
		text string
		err  error
	)
	switch base {
	case "text/plain", "text/markdown":
		text, err = readText(path)
	case docxMIME:
		text, err = readDocx(ctx, path)
	default:
		text, err = r.binary.Convert(ctx, path, base)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	zap.L().Info("convert: document converted",
		zap.String("mime", base),
		zap.Int("chars", len([]rune(text))),
	)
	return text, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "convert: read %s", path)
	}
	return string(data), nil
}

var extensions = map[string]string{
	"application/pdf":    ".pdf",
	docxMIME:             ".docx",
	"application/msword": ".doc",
	"image/png":          ".png",
	"image/jpeg":         ".jpg",
	"image/tiff":         ".tiff",
	"text/plain":         ".txt",
	"text/markdown":      ".md",
}

// BaseMIME strips parameters such as charset and lower-cases the type.
func BaseMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// Extension returns the file extension for mimeType, ".pdf" when unknown.
func Extension(mimeType string) string {
	if ext, ok := extensions[BaseMIME(mimeType)]; ok {
		return ext
	}
	return ".pdf"
}
