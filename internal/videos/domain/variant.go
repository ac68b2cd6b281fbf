package domain

// Variant selects which rendition of a record to serve
type Variant string

const (
	// VariantOriginal the stored original upload
	VariantOriginal Variant = "original"
	// VariantLow the reduced resolution rendition
	VariantLow Variant = "low"
)

// ParseVariant maps a path segment onto a Variant
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case VariantOriginal, VariantLow:
		return Variant(s), true
	}
	return "", false
}

// ObjectKey returns the record field holding this variant's object key,
// empty when the variant has not been produced yet
func (v Variant) ObjectKey(rec *VideoRecord) string {
	if v == VariantLow {
		return rec.LowKey
	}
	return rec.OriginalKey
}

// FilenameSuffix is appended to the download filename base
func (v Variant) FilenameSuffix() string {
	if v == VariantLow {
		return "_low"
	}
	return ""
}
