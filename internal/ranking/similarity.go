package ranking

import "math"

// CosineSimilarity returns the cosine of the angle between a and b,
// accumulated in float64. It returns 0 when either vector has zero
// magnitude or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score compares query with every candidate and returns one score per
// candidate, in candidate order.
func Score(query []float32, candidates [][]float32) []float64 {
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = CosineSimilarity(query, c)
	}
	return scores
}
