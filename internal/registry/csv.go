// Package registry imports the court case and client registries from CSV
// exports so enrichment can link extracted case numbers and names to them.
package registry

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // 0 = none
	LazyQuotes bool
}

// Row is one parsed record with its 1-based line number.
type Row struct {
	Line   int
	Fields []string
}

// StreamCSV reads r and sends the header on the first receive of the
// returned header channel, then every data row on the row channel. Errors
// go to the error channel. All channels are closed when reading completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan Row, <-chan error) {
	headerCh := make(chan []string, 1)
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(rowCh)
		defer close(headerCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "registry: csv cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "registry: read csv row")
				return
			}
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}

			if first {
				first = false
				if len(record) > 0 {
					record[0] = strings.TrimPrefix(record[0], "\ufeff")
				}
				headerCh <- record
				continue
			}

			line, _ := reader.FieldPos(0)
			select {
			case rowCh <- Row{Line: line, Fields: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "registry: csv cancelled")
				return
			}
		}
	}()

	return headerCh, rowCh, errCh
}
