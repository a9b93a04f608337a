// Package slug normalizes tenant-facing names into lowercase ASCII
// labels that are safe to use as subdomains and PostgreSQL schema
// names.
//
// A slug contains only [a-z0-9] and the configured separator. Unicode
// input is folded to ASCII where a sensible mapping exists ("Café
// Müller" becomes "cafe-muller"); everything unmappable collapses into
// a single separator.
//
// # Usage
//
//	slug.Make("Acme Corp.")
//	// "acme-corp"
//
//	slug.Make("Acme Corp.", slug.Separator("_"), slug.WithSuffix(6))
//	// "acme_corp_x7g3k2"
//
// With WithSuffix the random suffix always survives MaxLength
// truncation, which keeps generated identifiers collision-resistant
// even for long input names.
//
// Random suffixes come from crypto/rand; all functions are safe for
// concurrent use.
package slug
