// Package formula extracts formulas from document entries.
//
// A formula is a scalar whose text, after comments are removed and
// surrounding whitespace trimmed, begins with "=". [Extract] turns the
// entries yielded by [tree.Entries] into an ordered list of [Entry] values,
// keeping duplicate names, and [Strip] removes comments from a single text
// without touching the contents of string literals.
//
// Comment and string syntax recognized by [Strip]:
//
//	// line comment     through end of line; the line terminator is kept
//	/* block comment */ through the first "*/", or end of text
//	"..." '...'         strings; a backslash escapes the next character
//	`...`               raw string; no escapes
//	@"..."              verbatim string; "" is an escaped quote
package formula
