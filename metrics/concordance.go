// Package metrics provides evaluation metrics for survival models.
package metrics

import (
	"sync"

	"github.com/OasisYE/lifelines/core/parallel"
	"github.com/OasisYE/lifelines/pkg/errors"
)

// Pair scanning is O(n²); below this many subjects the goroutine overhead
// outweighs the work.
const concordanceParallelThreshold = 512

// ConcordanceIndex computes Harrell's C-index: the fraction of admissible
// subject pairs whose predicted scores order the same way as their survival
// times. Higher predicted scores must go with longer survival. Tied
// predictions count 0.5. The result lies in [0, 1] with 0.5 meaning no
// better than chance.
//
// A pair is admissible when the subject with the earlier time had an
// observed event, or when the times tie and exactly one of the two events
// was observed. Censored-before-death and doubly-censored ties carry no
// ordering information and are skipped.
//
// Returns a ValueError when no admissible pairs exist; callers decide what
// an undefined index means for them.
func ConcordanceIndex(eventTimes, predictedScores []float64, eventObserved []bool) (float64, error) {
	n := len(eventTimes)
	if n == 0 {
		return 0, errors.NewValueError("ConcordanceIndex", "empty input")
	}
	if len(predictedScores) != n {
		return 0, errors.NewDimensionError("ConcordanceIndex", n, len(predictedScores), 0)
	}
	if len(eventObserved) != n {
		return 0, errors.NewDimensionError("ConcordanceIndex", n, len(eventObserved), 0)
	}

	var (
		mu         sync.Mutex
		concordant float64
		pairs      float64
	)

	// Increments are 0.5 and 1.0, exactly representable, so the merge
	// order across chunks cannot change the totals.
	parallel.ParallelizeWithThreshold(n, concordanceParallelThreshold, func(start, end int) {
		var localConcordant, localPairs float64
		for a := start; a < end; a++ {
			for b := a + 1; b < n; b++ {
				if !admissiblePair(eventTimes[a], eventTimes[b], eventObserved[a], eventObserved[b]) {
					continue
				}
				localPairs++
				localConcordant += concordanceValue(
					eventTimes[a], eventTimes[b],
					predictedScores[a], predictedScores[b],
					eventObserved[a], eventObserved[b],
				)
			}
		}
		mu.Lock()
		concordant += localConcordant
		pairs += localPairs
		mu.Unlock()
	})

	if pairs == 0 {
		return 0, errors.NewValueError("ConcordanceIndex", "no admissible pairs in the dataset")
	}
	return concordant / pairs, nil
}

// admissiblePair reports whether the pair carries ordering information.
func admissiblePair(timeA, timeB float64, eventA, eventB bool) bool {
	if timeA == timeB {
		// Ties are informative only when exactly one event happened.
		return eventA != eventB
	}
	if eventA && eventB {
		return true
	}
	if eventA && timeA < timeB {
		return true
	}
	if eventB && timeB < timeA {
		return true
	}
	return false
}

// concordanceValue scores one admissible pair: 1 when the predictions order
// with the survival times, 0.5 on a prediction tie, 0 otherwise. On a time
// tie the censored subject outlived the observed one, so it must carry the
// higher score.
func concordanceValue(timeA, timeB, predA, predB float64, eventA, eventB bool) float64 {
	if predA == predB {
		return 0.5
	}
	if predA < predB {
		if timeA < timeB || (timeA == timeB && eventA && !eventB) {
			return 1
		}
		return 0
	}
	if timeA > timeB || (timeA == timeB && !eventA && eventB) {
		return 1
	}
	return 0
}
