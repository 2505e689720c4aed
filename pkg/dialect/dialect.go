// Package dialect defines identifier quoting and normalization rules for the
// SQL dialects the analyzer can target. The serializer consults the dialect to
// decide when a persisted alias must be quoted so the emitted text stays
// parseable by the target engine.
package dialect

import (
	"strings"

	"github.com/luminsql/lumin/pkg/token"
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Snowflake, Oracle).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly.
	NormCaseSensitive
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: " or `
	QuoteEnd      string                // End quote character (usually same as Quote)
	Escape        string                // Escape sequence for an embedded end quote
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}

// Dialect holds the identifier rules for one SQL dialect.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// Extra words reserved by this dialect beyond the core SQL keywords.
	reservedWords map[string]struct{}
}

// New creates a dialect with the given identifier config and extra reserved words.
func New(name string, idents IdentifierConfig, reserved ...string) *Dialect {
	d := &Dialect{
		Name:          name,
		Identifiers:   idents,
		reservedWords: make(map[string]struct{}, len(reserved)),
	}
	for _, w := range reserved {
		d.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return d
}

// NormalizeName normalizes an unquoted identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	case NormLowercase:
		return strings.ToLower(name)
	default: // NormCaseSensitive
		return name
	}
}

// NormalizeIdent normalizes an identifier for comparison. Quoted identifiers
// compare byte-exact; unquoted ones follow the dialect's normalization.
func (d *Dialect) NormalizeIdent(name string, quoted bool) string {
	if quoted {
		return name
	}
	return d.NormalizeName(name)
}

// IsReservedWord returns true if the word cannot be used as a bare identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	lower := strings.ToLower(word)
	if token.LookupIdent(lower) != token.IDENT {
		return true
	}
	_, ok := d.reservedWords[lower]
	return ok
}

// IsBareIdentifier returns true if name matches the dialect's unquoted
// identifier grammar and is not reserved.
func (d *Dialect) IsBareIdentifier(name string) bool {
	if name == "" || d.IsReservedWord(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIfNeeded quotes an identifier only when it is not a valid bare
// identifier. Persisted definitions stay readable by engines that share the
// dialect's identifier grammar.
func (d *Dialect) QuoteIfNeeded(name string) string {
	if d.IsBareIdentifier(name) {
		return name
	}
	return d.QuoteIdentifier(name)
}
