/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"hash/fnv"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// normalizeAlias returns the uniqueness key for an alias: NFC form, case
// folded, with punctuation, symbols and whitespace removed.
func normalizeAlias(s string) string {
	folded := cases.Fold().String(norm.NFC.String(s))

	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(folded))
}

// digestPassword scrambles a room password so it is not held in plaintext.
// It is not a security boundary.
func digestPassword(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))

	return strconv.FormatUint(h.Sum64(), 36)
}
