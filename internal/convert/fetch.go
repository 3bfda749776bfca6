package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/resilience"
)

// ErrFileTooLarge is returned when a document exceeds the size cap.
var ErrFileTooLarge = eris.New("file too large")

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	MaxFileSizeMB int
	Timeout       time.Duration
	TempDir       string
	Retry         resilience.RetryConfig
}

// Fetcher downloads signed document URLs into temp files.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	tempDir  string
	retry    resilience.RetryConfig
}

// NewFetcher creates a Fetcher. Defaults: 50 MB cap, 60s timeout.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.MaxFileSizeMB <= 0 {
		opts.MaxFileSizeMB = 50
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		maxBytes: int64(opts.MaxFileSizeMB) * 1024 * 1024,
		tempDir:  opts.TempDir,
		retry:    opts.Retry,
	}
}

// Download is a fetched file on local disk.
type Download struct {
	Path     string
	MimeType string
	Size     int64
}

// Remove deletes the temp file. Safe to call more than once.
func (d *Download) Remove() {
	if d == nil || d.Path == "" {
		return
	}
	if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("convert: remove temp file", zap.String("path", d.Path), zap.Error(err))
	}
}

// Download fetches url into a temp file named after mimeHint (or the response
// content type when the hint is empty). Transient failures are retried; size
// violations are not.
func (f *Fetcher) Download(ctx context.Context, url, mimeHint string) (*Download, error) {
	retry := f.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("fetcher", "download")
	}
	return resilience.DoVal(ctx, retry, func(ctx context.Context) (*Download, error) {
		return f.download(ctx, url, mimeHint)
	})
}

func (f *Fetcher) download(ctx context.Context, url, mimeHint string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "convert: create download request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "convert: download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("convert: download returned %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	if resp.ContentLength > f.maxBytes {
		return nil, f.tooLarge(resp.ContentLength)
	}

	mimeType := mimeHint
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}

	tmp, err := os.CreateTemp(f.tempDir, "enrich-*"+Extension(mimeType))
	if err != nil {
		return nil, eris.Wrap(err, "convert: create temp file")
	}
	d := &Download{Path: tmp.Name(), MimeType: BaseMIME(mimeType)}

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := tmp.Close()
	switch {
	case err != nil:
		d.Remove()
		return nil, eris.Wrap(err, "convert: write temp file")
	case closeErr != nil:
		d.Remove()
		return nil, eris.Wrap(closeErr, "convert: close temp file")
	case n > f.maxBytes:
		d.Remove()
		return nil, f.tooLarge(n)
	}
	d.Size = n

	zap.L().Info("convert: downloaded file",
		zap.Float64("size_kb", float64(n)/1024),
		zap.String("mime", d.MimeType),
		zap.String("path", d.Path),
	)
	return d, nil
}

func (f *Fetcher) tooLarge(n int64) error {
	return CheckSize(n, f.maxBytes)
}

// CheckSize returns ErrFileTooLarge when n bytes exceed maxBytes. A
// non-positive maxBytes disables the check.
func CheckSize(n, maxBytes int64) error {
	if maxBytes <= 0 || n <= maxBytes {
		return nil
	}
	return eris.Wrap(ErrFileTooLarge, fmt.Sprintf("convert: %.1fMB exceeds %dMB",
		float64(n)/1024/1024, maxBytes/1024/1024))
}

// WriteTemp stores in-memory content in a temp file named after mimeType.
func WriteTemp(dir string, content []byte, mimeType string) (*Download, error) {
	tmp, err := os.CreateTemp(dir, "enrich-*"+Extension(mimeType))
	if err != nil {
		return nil, eris.Wrap(err, "convert: create temp file")
	}
	d := &Download{Path: tmp.Name(), MimeType: BaseMIME(mimeType), Size: int64(len(content))}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		d.Remove()
		return nil, eris.Wrap(err, "convert: write temp file")
	}
	if err := tmp.Close(); err != nil {
		d.Remove()
		return nil, eris.Wrap(err, "convert: close temp file")
	}
	return d, nil
}
