package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ombuds/enrichment-engine/internal/model"
)

var enrichFlags struct {
	url          string
	mimeType     string
	clientID     int64
	proceedingID int64
	caseID       int64
	documentID   int64
	attorneyID   string
	contactID    string
	contextFile  string
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one enrichment and print the result",
}

var enrichDocumentCmd = &cobra.Command{
	Use:   "document [path]",
	Short: "Enrich a PDF, image or text document from a local path or --url",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.DocumentInput{
			FileURL:      enrichFlags.url,
			MimeType:     enrichFlags.mimeType,
			ClientID:     optionalID(enrichFlags.clientID),
			ProceedingID: optionalID(enrichFlags.proceedingID),
			CaseID:       optionalID(enrichFlags.caseID),
			DocumentID:   optionalID(enrichFlags.documentID),
			AttorneyID:   enrichFlags.attorneyID,
		}
		if len(args) == 1 {
			in.LocalPath = args[0]
			if in.MimeType == "" {
				in.MimeType = mimeFromPath(args[0])
			}
		}

		env, err := initPipeline(cmd.Context(), cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Enricher.EnrichDocument(cmd.Context(), in)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res)
	},
}

var enrichNoticesCmd = &cobra.Command{
	Use:   "pje [file|-]",
	Short: "Enrich notices pasted from the court case system",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(cmd, args)
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context(), cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Enricher.EnrichNotices(cmd.Context(), model.NoticeInput{
			RawText:    text,
			AttorneyID: enrichFlags.attorneyID,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res)
	},
}

var enrichTranscriptCmd = &cobra.Command{
	Use:   "transcript [file|-]",
	Short: "Enrich an interview transcript about a client",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(cmd, args)
		if err != nil {
			return err
		}
		var prior string
		if enrichFlags.contextFile != "" {
			b, err := os.ReadFile(enrichFlags.contextFile)
			if err != nil {
				return eris.Wrap(err, "read context file")
			}
			prior = string(b)
		}

		env, err := initPipeline(cmd.Context(), cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Enricher.EnrichTranscript(cmd.Context(), model.TranscriptInput{
			Transcript:   text,
			ClientID:     enrichFlags.clientID,
			ProceedingID: optionalID(enrichFlags.proceedingID),
			CaseID:       optionalID(enrichFlags.caseID),
			Context:      prior,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res)
	},
}

var enrichAgendaCmd = &cobra.Command{
	Use:   "agenda [file|-]",
	Short: "Enrich a hearing agenda",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(cmd, args)
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context(), cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Enricher.EnrichAgenda(cmd.Context(), model.AgendaInput{
			AgendaText: text,
			AttorneyID: enrichFlags.attorneyID,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res)
	},
}

var enrichMessageCmd = &cobra.Command{
	Use:   "message [file|-]",
	Short: "Triage an inbound chat message",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(cmd, args)
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context(), cfg, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Enricher.EnrichMessage(cmd.Context(), model.MessageInput{
			Message:   text,
			ContactID: enrichFlags.contactID,
			ClientID:  optionalID(enrichFlags.clientID),
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, res)
	},
}

func init() {
	f := enrichDocumentCmd.Flags()
	f.StringVar(&enrichFlags.url, "url", "", "signed URL to download instead of a local path")
	f.StringVar(&enrichFlags.mimeType, "mime", "", "MIME type (default guessed from the file extension)")
	f.Int64Var(&enrichFlags.documentID, "documento-id", 0, "stored document whose enrichment status is tracked")
	for _, c := range []*cobra.Command{enrichDocumentCmd, enrichMessageCmd} {
		c.Flags().Int64Var(&enrichFlags.clientID, "assistido-id", 0, "client id")
	}
	enrichTranscriptCmd.Flags().Int64Var(&enrichFlags.clientID, "assistido-id", 0, "client id (required)")
	_ = enrichTranscriptCmd.MarkFlagRequired("assistido-id")
	enrichTranscriptCmd.Flags().StringVar(&enrichFlags.contextFile, "context-file", "", "file with prior context for the client")
	for _, c := range []*cobra.Command{enrichDocumentCmd, enrichTranscriptCmd} {
		c.Flags().Int64Var(&enrichFlags.proceedingID, "processo-id", 0, "proceeding id")
		c.Flags().Int64Var(&enrichFlags.caseID, "caso-id", 0, "case id; facts are only recorded when set")
	}
	for _, c := range []*cobra.Command{enrichDocumentCmd, enrichNoticesCmd, enrichAgendaCmd} {
		c.Flags().StringVar(&enrichFlags.attorneyID, "defensor-id", "", "requesting attorney")
	}
	enrichMessageCmd.Flags().StringVar(&enrichFlags.contactID, "contact-id", "", "sender contact id (required)")
	_ = enrichMessageCmd.MarkFlagRequired("contact-id")

	enrichCmd.AddCommand(enrichDocumentCmd, enrichNoticesCmd, enrichTranscriptCmd, enrichAgendaCmd, enrichMessageCmd)
	rootCmd.AddCommand(enrichCmd)
}

func optionalID(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// readTextArg reads the file named by args[0], or stdin when args is empty
// or "-".
func readTextArg(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", eris.Wrap(err, "open input")
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "read input")
	}
	return string(b), nil
}

func mimeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
