package dialect

// ANSI is the default interchange dialect: double-quoted identifiers,
// unquoted identifiers normalized to lowercase for comparison.
var ANSI = New("ansi", IdentifierConfig{
	Quote:         `"`,
	QuoteEnd:      `"`,
	Escape:        `""`,
	Normalization: NormLowercase,
})

// Hive uses backtick quoting and case-insensitive identifiers. Persisted
// definitions serialized against it stay readable by Hive-compatible engines.
var Hive = New("hive", IdentifierConfig{
	Quote:         "`",
	QuoteEnd:      "`",
	Escape:        "``",
	Normalization: NormLowercase,
}, "date", "timestamp", "interval")

// Snowflake normalizes unquoted identifiers to uppercase.
var Snowflake = New("snowflake", IdentifierConfig{
	Quote:         `"`,
	QuoteEnd:      `"`,
	Escape:        `""`,
	Normalization: NormUppercase,
}, "ilike", "qualify")

func init() {
	Register(ANSI)
	Register(Hive)
	Register(Snowflake)
}
