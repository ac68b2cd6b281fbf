package app

import (
	"math/rand"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// deaccent decomposes to NFD and drops the combining marks, so "vidéo" slugs
// the same as "video"
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify normalizes a filename into a lower-case, URL and filesystem safe
// token: diacritics stripped, every run of non-alphanumerics collapsed into a
// single hyphen, leading/trailing hyphens trimmed. All-non-ASCII input slugs
// to the empty string.
func Slugify(name string) string {
	flat, _, err := transform.String(deaccent, name)
	if err != nil {
		flat = name
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range flat {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	return strings.ToLower(b.String())
}

// randomSuffix returns 6 base36 characters for id uniqueness
func randomSuffix() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

// newUploadID derives the multipart-path id: slug of the extension-stripped
// filename plus a random suffix. A filename that slugs to nothing falls back
// to the suffix alone.
func newUploadID(filename string) string {
	base := Slugify(strings.TrimSuffix(filename, filepath.Ext(filename)))
	suffix := randomSuffix()
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
