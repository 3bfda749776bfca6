package model

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// ErrInvalidInput is wrapped by every input validation failure.
var ErrInvalidInput = eris.New("invalid input")

// minTextLen is the shortest pasted text worth sending for extraction.
const minTextLen = 10

func requireText(field, s string, min int) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < min {
		return eris.Wrapf(ErrInvalidInput, "%s must have at least %d characters", field, min)
	}
	return nil
}

// DocumentInput references a binary document by signed URL, local path or
// in-memory content.
type DocumentInput struct {
	FileURL      string `json:"file_url"`
	MimeType     string `json:"mime_type"`
	ClientID     *int64 `json:"assistido_id,omitempty"`
	ProceedingID *int64 `json:"processo_id,omitempty"`
	CaseID       *int64 `json:"caso_id,omitempty"`
	DocumentID   *int64 `json:"documento_id,omitempty"`
	AttorneyID   string `json:"defensor_id"`

	LocalPath string `json:"-"`
	Content   []byte `json:"-"`
}

// Validate checks that exactly one source and a MIME type are present.
func (in DocumentInput) Validate() error {
	sources := 0
	for _, set := range []bool{in.FileURL != "", in.LocalPath != "", len(in.Content) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return eris.Wrap(ErrInvalidInput, "exactly one of file_url, path or content is required")
	}
	if strings.TrimSpace(in.MimeType) == "" {
		return eris.Wrap(ErrInvalidInput, "mime_type is required")
	}
	return nil
}

// DocumentResult is the output of document enrichment.
type DocumentResult struct {
	DocumentType    DocumentType    `json:"document_type" yaml:"document_type"`
	Area            Area            `json:"area,omitempty" yaml:"area,omitempty"`
	ExtractedData   Raw             `json:"extracted_data" yaml:"extracted_data"`
	EntitiesCreated []CreatedEntity `json:"entities_created" yaml:"entities_created"`
	Confidence      float64         `json:"confidence" yaml:"confidence"`
	MarkdownPreview string          `json:"markdown_preview" yaml:"markdown_preview"`
}

// NoticeInput is text pasted from the court case system.
type NoticeInput struct {
	RawText    string `json:"raw_text"`
	AttorneyID string `json:"defensor_id"`
}

// Validate checks the minimum text length.
func (in NoticeInput) Validate() error {
	return requireText("raw_text", in.RawText, minTextLen)
}

// NoticeResult is the output of case-system text enrichment.
type NoticeResult struct {
	Notices           []Notice        `json:"intimacoes" yaml:"intimacoes"`
	LinkedCaseIDs     []int64         `json:"processos_atualizados" yaml:"processos_atualizados"`
	IdentifiedClients []Client        `json:"assistidos_identificados" yaml:"assistidos_identificados"`
	EntitiesCreated   []CreatedEntity `json:"entities_created" yaml:"entities_created"`
	Total             int             `json:"total_processadas" yaml:"total_processadas"`
	Summary           string          `json:"resumo,omitempty" yaml:"resumo,omitempty"`
	Confidence        float64         `json:"confidence" yaml:"confidence"`
}

// TranscriptInput is an interview transcript about a client.
type TranscriptInput struct {
	Transcript   string `json:"transcript"`
	ClientID     int64  `json:"assistido_id"`
	ProceedingID *int64 `json:"processo_id,omitempty"`
	CaseID       *int64 `json:"caso_id,omitempty"`
	Context      string `json:"context,omitempty"`
}

// Validate checks the transcript length and the client id.
func (in TranscriptInput) Validate() error {
	if err := requireText("transcript", in.Transcript, minTextLen); err != nil {
		return err
	}
	if in.ClientID <= 0 {
		return eris.Wrap(ErrInvalidInput, "assistido_id is required")
	}
	return nil
}

// TranscriptResult is the output of transcript enrichment.
type TranscriptResult struct {
	KeyPoints        []string           `json:"key_points" yaml:"key_points"`
	Facts            []TranscriptFact   `json:"facts" yaml:"facts"`
	Persons          []TranscriptPerson `json:"persons_mentioned" yaml:"persons_mentioned"`
	ClientVersion    string             `json:"versao_do_assistido,omitempty" yaml:"versao_do_assistido,omitempty"`
	Contradictions   []string           `json:"contradictions" yaml:"contradictions"`
	SuggestedActions []string           `json:"suggested_actions" yaml:"suggested_actions"`
	Theses           []string           `json:"teses_possiveis" yaml:"teses_possiveis"`
	UrgencyLevel     Urgency            `json:"urgency_level" yaml:"urgency_level"`
	UrgencyReason    string             `json:"urgency_reason,omitempty" yaml:"urgency_reason,omitempty"`
	Summary          string             `json:"resumo_para_prontuario,omitempty" yaml:"resumo_para_prontuario,omitempty"`
	EntitiesCreated  []CreatedEntity    `json:"entities_created" yaml:"entities_created"`
	Confidence       float64            `json:"confidence" yaml:"confidence"`
}

// AgendaInput is a pasted hearing agenda.
type AgendaInput struct {
	AgendaText string `json:"pauta_text"`
	AttorneyID string `json:"defensor_id"`
}

// Validate checks the minimum text length.
func (in AgendaInput) Validate() error {
	return requireText("pauta_text", in.AgendaText, minTextLen)
}

// AgendaResult is the output of hearing agenda enrichment.
type AgendaResult struct {
	Hearings      []Hearing `json:"audiencias" yaml:"audiencias"`
	LinkedCaseIDs []int64   `json:"processos_vinculados" yaml:"processos_vinculados"`
	AgendaDate    string    `json:"data_pauta,omitempty" yaml:"data_pauta,omitempty"`
	Total         int       `json:"total_encontradas" yaml:"total_encontradas"`
	Confidence    float64   `json:"confidence" yaml:"confidence"`
}

// MessageInput is one inbound chat message.
type MessageInput struct {
	Message   string `json:"message"`
	ContactID string `json:"contact_id"`
	ClientID  *int64 `json:"assistido_id,omitempty"`
}

// Validate checks that the message and contact are present.
func (in MessageInput) Validate() error {
	if err := requireText("message", in.Message, 1); err != nil {
		return err
	}
	if strings.TrimSpace(in.ContactID) == "" {
		return eris.Wrap(ErrInvalidInput, "contact_id is required")
	}
	return nil
}

// MessageResult is the output of message triage.
type MessageResult struct {
	UrgencyLevel      Urgency         `json:"urgency_level" yaml:"urgency_level"`
	Subject           string          `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExtractedInfo     Raw             `json:"extracted_info" yaml:"extracted_info"`
	SuggestedResponse string          `json:"suggested_response,omitempty" yaml:"suggested_response,omitempty"`
	EntitiesCreated   []CreatedEntity `json:"entities_created" yaml:"entities_created"`
	Confidence        float64         `json:"confidence" yaml:"confidence"`
}
