// Package script converts chunk text between script variants, for example
// simplified to traditional Chinese.
//
// Convert is pure: it returns a new sequence with identical timing, and the
// Identity mapping returns its input as is so the untouched branch costs
// nothing. Mappings come from OpenCC profiles or from a phrase table file.
package script
