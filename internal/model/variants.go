package model

// Typed views over Raw results. Decoding never fails: missing or mistyped
// fields decode to zero values, so derivation rules only fire on fields that
// are really there.

// SentencaData is the subset of a ruling extraction used for derivation.
type SentencaData struct {
	Resultado     string
	TipoPenal     string
	RegimeInicial string
	Confidence    *float64
}

// DecodeSentenca reads resultado, crime.tipo_penal and pena.regime_inicial.
func DecodeSentenca(r Raw) SentencaData {
	return SentencaData{
		Resultado:     r.String("resultado"),
		TipoPenal:     r.Object("crime").String("tipo_penal"),
		RegimeInicial: r.Object("pena").String("regime_inicial"),
		Confidence:    confidencePtr(r),
	}
}

// LaudoData is the subset of an expert report used for derivation.
type LaudoData struct {
	ConclusaoResumo string
	PontosCriticos  []string
	Confidence      *float64
}

// DecodeLaudo reads conclusao_resumo and pontos_criticos.
func DecodeLaudo(r Raw) LaudoData {
	return LaudoData{
		ConclusaoResumo: r.String("conclusao_resumo"),
		PontosCriticos:  r.Strings("pontos_criticos"),
		Confidence:      confidencePtr(r),
	}
}

// DecisaoData is the subset of an interlocutory decision used for derivation.
type DecisaoData struct {
	TipoDecisao string
	Resultado   string
	Confidence  *float64
}

// DecodeDecisao reads tipo_decisao and resultado.
func DecodeDecisao(r Raw) DecisaoData {
	return DecisaoData{
		TipoDecisao: r.String("tipo_decisao"),
		Resultado:   r.String("resultado"),
		Confidence:  confidencePtr(r),
	}
}

// TranscriptFact is a fact pre-classified by the transcript extraction.
type TranscriptFact struct {
	Description string   `json:"descricao" yaml:"descricao"`
	Kind        FactKind `json:"tipo" yaml:"tipo"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Date        string   `json:"data_fato,omitempty" yaml:"data_fato,omitempty"`
	Relevance   string   `json:"relevancia,omitempty" yaml:"relevancia,omitempty"`
}

// TranscriptPerson is a person mentioned in a transcript.
type TranscriptPerson struct {
	Name         string      `json:"nome" yaml:"nome"`
	Role         PersonaRole `json:"papel" yaml:"papel"`
	Description  string      `json:"descricao,omitempty" yaml:"descricao,omitempty"`
	HelpsDefense bool        `json:"util_para_defesa" yaml:"util_para_defesa"`
}

// TranscriptData is a decoded transcript analysis.
type TranscriptData struct {
	KeyPoints        []string
	Facts            []TranscriptFact
	Persons          []TranscriptPerson
	ClientVersion    string
	Contradictions   []string
	SuggestedActions []string
	Theses           []string
	Urgency          Urgency
	UrgencyReason    string
	Summary          string
}

// DefaultTranscriptConfidence is used for transcript facts extracted without
// a confidence score.
const DefaultTranscriptConfidence = 0.5

// DecodeTranscript decodes a transcript analysis. Facts without a description
// and persons without a name are dropped.
func DecodeTranscript(r Raw) TranscriptData {
	d := TranscriptData{
		KeyPoints:        r.Strings("key_points"),
		ClientVersion:    r.String("versao_do_assistido"),
		Contradictions:   r.Strings("contradictions"),
		SuggestedActions: r.Strings("suggested_actions"),
		Theses:           r.Strings("teses_possiveis"),
		Urgency:          ParseUrgency(r.String("urgency_level")),
		UrgencyReason:    r.String("urgency_reason"),
		Summary:          r.String("resumo_para_prontuario"),
	}
	for _, f := range r.Objects("facts") {
		desc := f.String("descricao")
		if desc == "" {
			continue
		}
		conf := DefaultTranscriptConfidence
		if c, ok := f.ConfidenceOK(); ok {
			conf = c
		}
		d.Facts = append(d.Facts, TranscriptFact{
			Description: desc,
			Kind:        ParseFactKind(f.String("tipo")),
			Confidence:  conf,
			Date:        f.String("data_fato"),
			Relevance:   f.String("relevancia"),
		})
	}
	for _, p := range r.Objects("persons_mentioned") {
		name := p.String("nome")
		if name == "" {
			continue
		}
		d.Persons = append(d.Persons, TranscriptPerson{
			Name:         name,
			Role:         ParsePersonaRole(p.String("papel")),
			Description:  p.String("descricao"),
			HelpsDefense: p.Bool("util_para_defesa"),
		})
	}
	return d
}

// Notice (intimação) is one case-system record extracted from pasted text.
type Notice struct {
	CaseNumber     string   `json:"numero_processo,omitempty" yaml:"numero_processo,omitempty"`
	Court          string   `json:"vara,omitempty" yaml:"vara,omitempty"`
	District       string   `json:"comarca,omitempty" yaml:"comarca,omitempty"`
	Area           Area     `json:"atribuicao,omitempty" yaml:"atribuicao,omitempty"`
	NotifiedPerson string   `json:"intimado,omitempty" yaml:"intimado,omitempty"`
	Defendant      string   `json:"reu_principal,omitempty" yaml:"reu_principal,omitempty"`
	CoDefendants   []string `json:"correus" yaml:"correus"`
	Victim         string   `json:"vitima,omitempty" yaml:"vitima,omitempty"`
	Plaintiff      string   `json:"parte_autora,omitempty" yaml:"parte_autora,omitempty"`
	Offense        string   `json:"crime,omitempty" yaml:"crime,omitempty"`
	Articles       []string `json:"artigos" yaml:"artigos"`
	Qualifiers     []string `json:"qualificadoras" yaml:"qualificadoras"`
	Phase          string   `json:"fase_processual,omitempty" yaml:"fase_processual,omitempty"`
	DocumentKind   string   `json:"tipo_documento,omitempty" yaml:"tipo_documento,omitempty"`
	DispatchKind   string   `json:"tipo_expedicao,omitempty" yaml:"tipo_expedicao,omitempty"`
	DeadlineKind   string   `json:"tipo_prazo,omitempty" yaml:"tipo_prazo,omitempty"`
	Deadline       string   `json:"data_limite,omitempty" yaml:"data_limite,omitempty"`
	DeadlineDays   int      `json:"dias_prazo,omitempty" yaml:"dias_prazo,omitempty"`
	InCustody      bool     `json:"reu_preso" yaml:"reu_preso"`
	Summary        string   `json:"texto_expediente,omitempty" yaml:"texto_expediente,omitempty"`
	Urgency        Urgency  `json:"urgencia" yaml:"urgencia"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
}

// DecodeNotices decodes the intimacoes list.
func DecodeNotices(r Raw) []Notice {
	items := r.Objects("intimacoes")
	out := make([]Notice, 0, len(items))
	for _, n := range items {
		days, _ := n.Int("dias_prazo")
		out = append(out, Notice{
			CaseNumber:     n.String("numero_processo"),
			Court:          n.String("vara"),
			District:       n.String("comarca"),
			Area:           ParseArea(n.String("atribuicao")),
			NotifiedPerson: n.String("intimado"),
			Defendant:      n.String("reu_principal"),
			CoDefendants:   n.Strings("correus"),
			Victim:         n.String("vitima"),
			Plaintiff:      n.String("parte_autora"),
			Offense:        n.String("crime"),
			Articles:       n.Strings("artigos"),
			Qualifiers:     n.Strings("qualificadoras"),
			Phase:          n.String("fase_processual"),
			DocumentKind:   n.String("tipo_documento"),
			DispatchKind:   n.String("tipo_expedicao"),
			DeadlineKind:   n.String("tipo_prazo"),
			Deadline:       n.String("data_limite"),
			DeadlineDays:   days,
			InCustody:      n.Bool("reu_preso"),
			Summary:        n.String("texto_expediente"),
			Urgency:        ParseUrgency(n.String("urgencia")),
			Confidence:     n.Confidence(),
		})
	}
	return out
}

// Hearing (audiência) is one entry of a hearing agenda.
type Hearing struct {
	Kind       string  `json:"tipo,omitempty" yaml:"tipo,omitempty"`
	CaseNumber string  `json:"numero_processo,omitempty" yaml:"numero_processo,omitempty"`
	Defendant  string  `json:"reu,omitempty" yaml:"reu,omitempty"`
	Victim     string  `json:"vitima,omitempty" yaml:"vitima,omitempty"`
	Offense    string  `json:"crime,omitempty" yaml:"crime,omitempty"`
	Judge      string  `json:"juiz,omitempty" yaml:"juiz,omitempty"`
	Prosecutor string  `json:"promotor,omitempty" yaml:"promotor,omitempty"`
	Date       string  `json:"data,omitempty" yaml:"data,omitempty"`
	Time       string  `json:"hora,omitempty" yaml:"hora,omitempty"`
	Room       string  `json:"sala,omitempty" yaml:"sala,omitempty"`
	Court      string  `json:"vara,omitempty" yaml:"vara,omitempty"`
	InCustody  bool    `json:"reu_preso" yaml:"reu_preso"`
	Notes      string  `json:"observacoes,omitempty" yaml:"observacoes,omitempty"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// DecodeHearings decodes the audiencias list.
func DecodeHearings(r Raw) []Hearing {
	items := r.Objects("audiencias")
	out := make([]Hearing, 0, len(items))
	for _, h := range items {
		out = append(out, Hearing{
			Kind:       h.String("tipo"),
			CaseNumber: h.String("numero_processo"),
			Defendant:  h.String("reu"),
			Victim:     h.String("vitima"),
			Offense:    h.String("crime"),
			Judge:      h.String("juiz"),
			Prosecutor: h.String("promotor"),
			Date:       h.String("data"),
			Time:       h.String("hora"),
			Room:       h.String("sala"),
			Court:      h.String("vara"),
			InCustody:  h.Bool("reu_preso"),
			Notes:      h.String("observacoes"),
			Confidence: h.Confidence(),
		})
	}
	return out
}

// MessageTriage is a decoded chat-message triage.
type MessageTriage struct {
	Urgency           Urgency
	Subject           string
	Summary           string
	ExtractedInfo     Raw
	SuggestedResponse string
}

// DecodeMessageTriage decodes a message triage result.
func DecodeMessageTriage(r Raw) MessageTriage {
	info := r.Object("extracted_info")
	if info == nil {
		info = Raw{}
	}
	return MessageTriage{
		Urgency:           ParseUrgency(r.String("urgency_level")),
		Subject:           r.String("subject"),
		Summary:           r.String("resumo"),
		ExtractedInfo:     info,
		SuggestedResponse: r.String("suggested_response"),
	}
}

func confidencePtr(r Raw) *float64 {
	if c, ok := r.ConfidenceOK(); ok {
		return &c
	}
	return nil
}
