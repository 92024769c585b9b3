package evaluation

import "math"

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func topK(retrieved []string, k int) []string {
	if k < len(retrieved) {
		return retrieved[:k]
	}
	return retrieved
}

// RecallAtK is the fraction of relevant SKUs found in the top k retrieved.
// Returns 0.0 if relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	found := 0
	for _, sku := range topK(retrieved, k) {
		if _, ok := relevantSet[sku]; ok {
			found++
		}
	}

	return float64(found) / float64(len(relevant))
}

// MRRAtK is the reciprocal rank of the first relevant SKU in the top k, or
// 0.0 when none is there.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	for i, sku := range topK(retrieved, k) {
		if _, ok := relevantSet[sku]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// NDCGAtK scores the ranking of the top k with binary relevance, normalised
// by the ideal ranking of min(k, len(relevant)) hits.
func NDCGAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0.0
	}

	relevantSet := toSet(relevant)
	dcg := 0.0
	for i, sku := range topK(retrieved, k) {
		if _, ok := relevantSet[sku]; ok {
			dcg += 1.0 / math.Log2(float64(i+2))
		}
	}

	ideal := 0.0
	for i := 0; i < k && i < len(relevantSet); i++ {
		ideal += 1.0 / math.Log2(float64(i+2))
	}
	return dcg / ideal
}
