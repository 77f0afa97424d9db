package app

import "github.com/yourusername/kaggle-sync/internal/domain"

// SearchLimit returns how many candidates to request so that roughly
// number unseen datasets remain once the known ones are filtered out.
// The margin is a heuristic; a run may still come up short.
func SearchLimit(known, number, margin int) int {
	return known + number + margin
}

// SelectNew returns, in ranking order, the first number candidates that are
// not in known. A candidate repeated in the ranking is only taken once.
func SelectNew(candidates []string, known domain.DatasetSet, number int) []string {
	if number < 0 {
		number = 0
	}
	selected := make([]string, 0, number)
	seen := domain.NewDatasetSet()
	for _, ref := range candidates {
		if len(selected) >= number {
			break
		}
		if known.Has(ref) || seen.Has(ref) {
			continue
		}
		seen.Add(ref)
		selected = append(selected, ref)
	}
	return selected
}
