package textutil

// CosineSimilarity measures the angle between two fingerprints in
// [0,1]. Nil or empty fingerprints compare as 0. The dot product walks
// the smaller vector.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.magnitude == 0 || b.magnitude == 0 {
		return 0
	}
	small, large := a, b
	if len(b.terms) < len(a.terms) {
		small, large = b, a
	}
	var dot float64
	for term, freq := range small.terms {
		dot += freq * large.terms[term]
	}
	return dot / (a.magnitude * b.magnitude)
}
