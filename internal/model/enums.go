package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DocumentType is the closed set of document kinds the classifier may return.
type DocumentType string

const (
	DocSentenca DocumentType = "sentenca"
	DocDecisao  DocumentType = "decisao"
	DocLaudo    DocumentType = "laudo"
	DocCertidao DocumentType = "certidao"
	DocPeticao  DocumentType = "peticao"
	DocDenuncia DocumentType = "denuncia"
	DocOutro    DocumentType = "outro"

	// DocTranscript marks a transcript analysis. It is never produced by the
	// classifier; the transcript pipeline uses it to select derivation rules.
	DocTranscript DocumentType = "transcricao"
)

var documentTypes = map[string]DocumentType{
	"sentenca": DocSentenca,
	"decisao":  DocDecisao,
	"laudo":    DocLaudo,
	"certidao": DocCertidao,
	"peticao":  DocPeticao,
	"denuncia": DocDenuncia,
	"outro":    DocOutro,
}

// ParseDocumentType maps a classifier tag onto the enum. Accents and case are
// ignored. Unknown or empty tags map to DocOutro with ok=false so callers can
// log the rejected tag.
func ParseDocumentType(tag string) (DocumentType, bool) {
	if dt, ok := documentTypes[NormalizeTag(tag)]; ok {
		return dt, true
	}
	return DocOutro, false
}

// Area is the legal practice area (atribuição).
type Area string

const (
	AreaJuri     Area = "JURI"
	AreaVD       Area = "VD"
	AreaEP       Area = "EP"
	AreaCriminal Area = "CRIMINAL"
	AreaCivel    Area = "CIVEL"
	AreaInfancia Area = "INFANCIA"
)

// ParseArea returns the area for tag, or "" when the tag is not recognised.
func ParseArea(tag string) Area {
	switch a := Area(strings.ToUpper(NormalizeTag(tag))); a {
	case AreaJuri, AreaVD, AreaEP, AreaCriminal, AreaCivel, AreaInfancia:
		return a
	default:
		return ""
	}
}

// FactKind tags a fact as contested or uncontested.
type FactKind string

const (
	FactContested   FactKind = "controverso"
	FactUncontested FactKind = "incontroverso"
)

// ParseFactKind defaults to FactUncontested.
func ParseFactKind(tag string) FactKind {
	if NormalizeTag(tag) == string(FactContested) {
		return FactContested
	}
	return FactUncontested
}

// PersonaRole is the role of a person referenced by a case.
type PersonaRole string

const (
	RoleWitness     PersonaRole = "testemunha"
	RoleCoDefendant PersonaRole = "correu"
	RoleVictim      PersonaRole = "vitima"
	RoleRelative    PersonaRole = "familiar"
	RoleOfficer     PersonaRole = "policial"
	RoleExpert      PersonaRole = "perito"
	RoleOther       PersonaRole = "outro"
)

// ParsePersonaRole defaults to RoleOther.
func ParsePersonaRole(tag string) PersonaRole {
	switch r := PersonaRole(NormalizeTag(tag)); r {
	case RoleWitness, RoleCoDefendant, RoleVictim, RoleRelative, RoleOfficer, RoleExpert:
		return r
	default:
		return RoleOther
	}
}

// Urgency is an ordinal priority.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// ParseUrgency defaults to UrgencyLow.
func ParseUrgency(tag string) Urgency {
	switch u := Urgency(NormalizeTag(tag)); u {
	case UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u
	default:
		return UrgencyLow
	}
}

// AtLeast reports whether u is as urgent as other.
func (u Urgency) AtLeast(other Urgency) bool {
	return u.rank() >= other.rank()
}

func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// EntityKind names a persisted entity in pipeline results.
type EntityKind string

const (
	EntityFact         EntityKind = "case_fact"
	EntityPersona      EntityKind = "case_persona"
	EntityAnnotation   EntityKind = "anotacao"
	EntityFactEvidence EntityKind = "fact_evidence"
)

// EnrichmentStatus tracks a stored document through enrichment.
type EnrichmentStatus string

const (
	StatusPending    EnrichmentStatus = "pending"
	StatusProcessing EnrichmentStatus = "processing"
	StatusEnriched   EnrichmentStatus = "enriched"
	StatusFailed     EnrichmentStatus = "failed"
)

// NormalizeTag lower-cases, trims and strips diacritics so "Sentença" and
// "sentenca" compare equal.
func NormalizeTag(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// NormalizeCaseNumber canonicalises a court case number. Twenty-digit CNJ
// numbers are formatted NNNNNNN-DD.AAAA.J.TR.OOOO regardless of the input
// punctuation; anything else is returned trimmed.
func NormalizeCaseNumber(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 20 {
		return strings.TrimSpace(s)
	}
	return d[0:7] + "-" + d[7:9] + "." + d[9:13] + "." + d[13:14] + "." + d[14:16] + "." + d[16:20]
}
