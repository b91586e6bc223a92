// Package narrative obtains outcome text for a resolved job and extracts the
// signals the consequence calculator needs from it.
package narrative

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/okian/mercwork/internal/domain/model"
)

// Signals is what an Analyzer extracts from narrative text.
type Signals struct {
	// Factions holds mentioned faction ids in catalog order.
	Factions    []string `json:"factions"`
	HighProfile bool     `json:"high_profile"`
	Violent     bool     `json:"violent"`
	Stealthy    bool     `json:"stealthy"`
	Public      bool     `json:"public"`
}

// Analyzer turns narrative text into consequence signals.
type Analyzer interface {
	Analyze(text string) Signals
}

// Keyword lists for the four flags.
var (
	HighProfileTerms = []string{"headline", "news", "high-profile", "executive", "ceo", "vip"}
	ViolentTerms     = []string{"gunfire", "firefight", "shot", "killed", "explosion", "blood"}
	StealthyTerms    = []string{"silent", "undetected", "ghost", "unseen", "quietly", "stealth"}
	PublicTerms      = []string{"crowd", "public", "broadcast", "witness", "spectacle", "live feed"}
)

// KeywordAnalyzer matches faction names, synonyms and flag terms on word
// boundaries of case-folded text.
type KeywordAnalyzer struct {
	factions []factionTerms
}

type factionTerms struct {
	id    string
	terms []string
}

// NewKeywordAnalyzer builds an analyzer over the given catalog.
func NewKeywordAnalyzer(factions []model.Faction) *KeywordAnalyzer {
	fold := cases.Fold()
	a := &KeywordAnalyzer{}
	for _, f := range factions {
		ft := factionTerms{id: f.ID, terms: []string{fold.String(f.Name)}}
		for _, s := range f.Synonyms {
			ft.terms = append(ft.terms, fold.String(s))
		}
		a.factions = append(a.factions, ft)
	}
	return a
}

// Analyze implements Analyzer. A Caser is stateful, so each call folds with
// its own.
func (a *KeywordAnalyzer) Analyze(text string) Signals {
	folded := cases.Fold().String(text)
	var sig Signals
	for _, f := range a.factions {
		if containsAny(folded, f.terms) {
			sig.Factions = append(sig.Factions, f.id)
		}
	}
	sig.HighProfile = containsAny(folded, HighProfileTerms)
	sig.Violent = containsAny(folded, ViolentTerms)
	sig.Stealthy = containsAny(folded, StealthyTerms)
	sig.Public = containsAny(folded, PublicTerms)
	return sig
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if containsTerm(text, t) {
			return true
		}
	}
	return false
}

// containsTerm reports whether term occurs in text with no letter or digit
// directly on either side.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
