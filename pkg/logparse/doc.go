// Package logparse groups cache-simulation log files into runs.
//
// A log is one or more concatenated simulation runs. Each run starts with a
// configuration header followed by one access entry per line:
//
//	# Config:
//	# Cache Size: 8192
//	# Block Size: 64
//	# Associativity: 4
//	# Replacement Policy: LRU
//	# Write Policy: WB
//	R: Address: 0x10, Set: 0x1, Tag: 0x0, Clean, Miss, Read Allocated Block (WB or WT)
//	R: Address: 0x10, Set: 0x1, Tag: 0x0, Clean, Hit
//
// Parse turns such a log into an ordered []Group, one per run that logged at
// least one entry. Header fields missing from a block stay nil in Config.
//
// Errors (errs.go):
//
//   - ErrMalformedNumericField: an integer field held a non-integer value;
//     the concrete error is a *FieldError naming the field, value and line.
//
// An input without any "# Config:" line is not an error; Parse returns an
// empty slice.
package logparse
