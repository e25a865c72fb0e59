// Package translation relays chunk text through a pivot language.
//
// An Engine owns an immutable set of LanguageSpecs, a Relay that performs
// single-hop translations, and a Cache keyed by (text, route) that is shared
// by every branch of one run. Translate resolves a target into at most two
// relay legs (source to pivot, pivot to target); TranslateSequence applies it
// to each chunk in order, isolating failures so a bad chunk becomes empty text
// instead of aborting the batch.
package translation
