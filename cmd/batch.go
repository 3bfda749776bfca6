package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ombuds/enrichment-engine/internal/model"
)

var (
	batchLimit       int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.jsonl>",
	Short: "Enrich the documents listed in a JSON lines manifest",
	Long: `Each manifest line is a document request: {"path": "...", "mime_type": "..."} or
{"file_url": "...", "mime_type": "..."}, plus optional assistido_id, processo_id, caso_id and
documento_id. Documents are enriched concurrently and share one rate-limited extractor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrap(err, "open manifest")
		}
		defer f.Close() //nolint:errcheck

		items, err := readManifest(f)
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(items) > batchLimit {
			items = items[:batchLimit]
		}

		env, err := initPipeline(ctx, cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		results, err := processBatch(ctx, items, concurrency, env.Enricher.EnrichDocument)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, results)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of documents to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "documents in flight (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// batchItem is one manifest line.
type batchItem struct {
	model.DocumentInput
	Path string `json:"path,omitempty"`
}

// batchResult reports one document. Exactly one of Result and Error is set.
type batchResult struct {
	Line   int                   `json:"line" yaml:"line"`
	Source string                `json:"source" yaml:"source"`
	Result *model.DocumentResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string                `json:"error,omitempty" yaml:"error,omitempty"`
}

type indexedItem struct {
	line int
	in   model.DocumentInput
}

func readManifest(r io.Reader) ([]indexedItem, error) {
	var items []indexedItem
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var it batchItem
		if err := json.Unmarshal([]byte(text), &it); err != nil {
			return nil, eris.Wrapf(err, "manifest line %d", line)
		}
		in := it.DocumentInput
		if it.Path != "" {
			in.LocalPath = it.Path
			if in.MimeType == "" {
				in.MimeType = mimeFromPath(it.Path)
			}
		}
		items = append(items, indexedItem{line: line, in: in})
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read manifest")
	}
	return items, nil
}

// enrichFunc is the callback signature for enriching one document.
type enrichFunc func(ctx context.Context, in model.DocumentInput) (*model.DocumentResult, error)

// processBatch enriches items with at most concurrency in flight. A failed
// document is reported in its result and does not stop the batch.
func processBatch(ctx context.Context, items []indexedItem, concurrency int, enrich enrichFunc) ([]batchResult, error) {
	results := make([]batchResult, len(items))
	if len(items) == 0 {
		zap.L().Info("batch: manifest is empty")
		return results, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("documents", len(items)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, item := range items {
		results[i] = batchResult{Line: item.line, Source: sourceOf(item.in)}
		g.Go(func() error {
			log := zap.L().With(zap.Int("line", item.line))

			res, err := enrich(gctx, item.in)
			if err != nil {
				failed.Add(1)
				results[i].Error = err.Error()
				log.Error("batch: enrichment failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			results[i].Result = res
			log.Info("batch: enrichment complete",
				zap.String("document_type", string(res.DocumentType)),
				zap.Int("entities_created", len(res.EntitiesCreated)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}

func sourceOf(in model.DocumentInput) string {
	if in.LocalPath != "" {
		return in.LocalPath
	}
	if i := strings.IndexByte(in.FileURL, '?'); i >= 0 {
		// Signed URL query strings carry credentials.
		return in.FileURL[:i]
	}
	return in.FileURL
}
