package sanitizer

// NormalizeIDs drops non-positive and repeated ids, keeping first-seen order.
func NormalizeIDs(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}

	seen := make(map[int]bool, len(ids))
	result := make([]int, 0, len(ids))

	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	return result
}
