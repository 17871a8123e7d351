// Package validation implements the pure scoring half of the deliverability
// engine: address syntax, spam heuristics, template quality and list hygiene.
//
// Nothing in this package performs I/O or logs. A Validator is immutable
// after New returns and is safe for concurrent use; every call works only
// on its arguments.
package validation
