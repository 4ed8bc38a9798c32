// Package analysis runs static analyses over the method bodies of a loaded
// module: string literal search, call and reference scans, type dependencies
// and control-flow listings.
package analysis

// MaxStringLength caps a string literal shown in a one-line listing.
const MaxStringLength = 256
