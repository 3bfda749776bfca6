package model

// DerivedFact is an atomic, sourced assertion about a case.
type DerivedFact struct {
	Description string   `json:"descricao" yaml:"descricao"`
	Kind        FactKind `json:"tipo" yaml:"tipo"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Source      string   `json:"fonte" yaml:"fonte"`
}

// DerivedPersona is a person referenced by a case.
type DerivedPersona struct {
	Name        string      `json:"nome" yaml:"nome"`
	Role        PersonaRole `json:"papel" yaml:"papel"`
	Description string      `json:"descricao,omitempty" yaml:"descricao,omitempty"`
}

// CreatedEntity reports one successful write.
type CreatedEntity struct {
	Kind EntityKind `json:"type" yaml:"type"`
	ID   string     `json:"id" yaml:"id"`
}

// Annotation is a note attached to a client, proceeding or case.
type Annotation struct {
	ClientID     *int64         `json:"assistido_id,omitempty"`
	ProceedingID *int64         `json:"processo_id,omitempty"`
	CaseID       *int64         `json:"caso_id,omitempty"`
	Content      string         `json:"conteudo"`
	Kind         string         `json:"tipo"`
	Urgency      Urgency        `json:"urgencia,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// FactEvidence links a created fact to the document it was derived from.
type FactEvidence struct {
	FactID       string  `json:"fact_id"`
	DocumentID   *int64  `json:"documento_id,omitempty"`
	Description  string  `json:"descricao"`
	EvidenceKind string  `json:"tipo_evidencia"`
	Confidence   float64 `json:"confidence"`
}

// Proceeding is a stored court proceeding (processo), found by case number.
type Proceeding struct {
	ID       int64  `json:"id" yaml:"id"`
	Number   string `json:"numero" yaml:"numero"`
	ClientID *int64 `json:"assistido_id,omitempty" yaml:"assistido_id,omitempty"`
	CaseID   *int64 `json:"caso_id,omitempty" yaml:"caso_id,omitempty"`
}

// Client is a stored client (assistido).
type Client struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"nome" yaml:"nome"`
}
