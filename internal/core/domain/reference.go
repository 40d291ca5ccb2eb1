package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReferenceKind is the artifact family a reference token points at.
type ReferenceKind string

// Reference kinds recognised by the token grammar.
const (
	ReferenceKindTables   ReferenceKind = "tables"
	ReferenceKindPictures ReferenceKind = "pictures"
	ReferenceKindTexts    ReferenceKind = "texts"
)

// IsArtifact returns true for kinds that resolve against the side table.
func (k ReferenceKind) IsArtifact() bool {
	return k == ReferenceKindTables || k == ReferenceKindPictures
}

var (
	referenceTokenPattern = regexp.MustCompile(`^#/(tables|pictures|texts)/(\d+)$`)
	referenceDelimiters   = regexp.MustCompile(`[,\s]+`)
)

// Reference is a parsed token of the form #/<kind>/<index>.
type Reference struct {
	Kind  ReferenceKind
	Index int
}

// String renders the reference in its canonical token form.
func (r Reference) String() string {
	return "#/" + string(r.Kind) + "/" + strconv.Itoa(r.Index)
}

// referenceKindOf matches token against the #/(tables|pictures|texts)/<n>
// grammar without converting the index, so arbitrarily long indices match.
func referenceKindOf(token string) (ReferenceKind, bool) {
	m := referenceTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return "", false
	}
	return ReferenceKind(m[1]), true
}

// ParseReferenceToken parses a single token. It reports false for
// anything outside the #/(tables|pictures|texts)/<n> grammar, and for
// grammar-valid tokens whose index does not fit in an int.
func ParseReferenceToken(token string) (Reference, bool) {
	m := referenceTokenPattern.FindStringSubmatch(token)
	if m == nil {
		return Reference{}, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return Reference{}, false
	}
	return Reference{Kind: ReferenceKind(m[1]), Index: idx}, true
}

// SplitReferenceField splits a delimited reference field into raw tokens.
// Commas and whitespace both delimit; runs collapse and edges are trimmed.
func SplitReferenceField(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	var tokens []string
	for _, tok := range referenceDelimiters.Split(field, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// ReferenceSet is the set of distinct artifact tokens attributable to one chunk.
type ReferenceSet map[string]struct{}

// Add inserts a token.
func (s ReferenceSet) Add(token string) {
	s[token] = struct{}{}
}

// Contains reports whether the token is in the set.
func (s ReferenceSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the number of tokens.
func (s ReferenceSet) Len() int {
	return len(s)
}

// Sorted returns the tokens in lexical order.
func (s ReferenceSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tok := range s {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// ParseReferences collects the table and picture tokens from the
// self, parent and child reference fields of a chunk.
func ParseReferences(meta ChunkMetadata) ReferenceSet {
	set := make(ReferenceSet)
	for _, field := range []string{meta.SelfRef, meta.ParentRef, meta.ChildRef} {
		for _, tok := range SplitReferenceField(field) {
			kind, ok := referenceKindOf(tok)
			if !ok || !kind.IsArtifact() {
				continue
			}
			set.Add(tok)
		}
	}
	return set
}

// NormaliseReferenceField keeps only grammar-valid tokens and joins
// them with single spaces. Text anchors are kept.
func NormaliseReferenceField(field string) string {
	var valid []string
	for _, tok := range SplitReferenceField(field) {
		if _, ok := referenceKindOf(tok); ok {
			valid = append(valid, tok)
		}
	}
	return strings.Join(valid, " ")
}
