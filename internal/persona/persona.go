// Package persona renders pipeline answers in one of the two fixed
// presentation voices of the dispensation guideline assistant.
package persona

import (
	"fmt"
	"strings"
)

// ID identifies one of the two personas. The set is closed: every
// persona carries its own formatting behavior, and unknown ids are a
// request-level validation error, never a silent default.
type ID string

const (
	// DrGasnelio is the technical voice: answers pass through verbatim
	// with a confidence annotation.
	DrGasnelio ID = "dr_gasnelio"
	// Ga is the simplified voice: domain jargon is rewritten in plain
	// language before presentation.
	Ga ID = "ga"
)

// Profile is an immutable persona configuration. Exactly two instances
// exist, built at package init and never mutated.
type Profile struct {
	ID          ID
	DisplayName string
	simplify    bool
	refusal     string
	format      func(answer string, confidence float64) string
}

var drGasnelio = Profile{
	ID:          DrGasnelio,
	DisplayName: "Dr. Gasnelio",
	refusal: "Dr. Gasnelio responde:\n\n" +
		"Desculpe, não encontrei essa informação específica na minha tese sobre " +
		"roteiro de dispensação para hanseníase.\n\n" +
		"Posso ajudá-lo com outras questões relacionadas ao tema da pesquisa.",
	format: func(answer string, confidence float64) string {
		return fmt.Sprintf(
			"Dr. Gasnelio responde:\n\n%s\n\n*Baseado na tese sobre roteiro de dispensação para hanseníase. Confiança: %.1f%%*",
			answer, confidence*100,
		)
	},
}

var ga = Profile{
	ID:          Ga,
	DisplayName: "Gá",
	simplify:    true,
	refusal: "Gá responde:\n\n" +
		"Ih, essa eu não sei! 😅\n\n" +
		"Só posso explicar coisas que estão na tese sobre hanseníase e dispensação " +
		"de remédios. Pergunta outra coisa sobre o tema?",
	format: func(answer string, confidence float64) string {
		return fmt.Sprintf("Gá explica:\n\n%s\n\n*Tá na tese, pode confiar! 😊*", answer)
	},
}

// Lookup resolves a persona id. The bool reports whether the id names
// one of the two known personas.
func Lookup(id string) (Profile, bool) {
	switch ID(id) {
	case DrGasnelio:
		return drGasnelio, true
	case Ga:
		return ga, true
	}
	return Profile{}, false
}

// All returns the two persona profiles in a fixed order.
func All() []Profile {
	return []Profile{drGasnelio, ga}
}

// Format renders the final display text for this persona. origin is
// the pipeline's source tag: "extracted" and "context_extraction"
// render the answer template, anything else renders the refusal.
func (p Profile) Format(answer, origin string, confidence float64) string {
	switch origin {
	case "extracted", "context_extraction":
	default:
		return p.refusal
	}
	if answer == "" {
		return p.refusal
	}
	if p.simplify {
		answer = simplify(answer)
	}
	return p.format(answer, confidence)
}

// Refusal returns the persona's static refusal text.
func (p Profile) Refusal() string {
	return p.refusal
}

// replacement maps a technical term to its plain-language phrase.
type replacement struct {
	technical string
	simple    string
}

// replacements is applied in order as whole-term substitution. Longer,
// more specific terms come first so a phrase like "via de
// administração" is rewritten before the bare "administração" can fire
// inside it and mangle the match.
var replacements = []replacement{
	{"interação medicamentosa", "mistura de remédios"},
	{"via de administração", "como tomar"},
	{"reação adversa", "efeito colateral"},
	{"dispensação", "entrega de remédios"},
	{"medicamentos", "remédios"},
	{"administração", "como tomar"},
	{"posologia", "como tomar"},
	{"orientação", "explicação"},
	{"protocolo", "guia"},
	{"paciente", "pessoa"},
	{"adesão", "seguir o tratamento"},
}

// simplify rewrites domain jargon into plain language for the Gá voice.
func simplify(text string) string {
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.technical, r.simple)
	}
	return text
}
