package trace

import (
	"errors"
	"sort"
)

// ErrTooFewEdges is returned if a channel has not enough edges to measure a clock.
var ErrTooFewEdges = errors.New("too few edges to estimate the clock")

// minEdges is the count of edges needed to estimate the clock period.
const minEdges = 8

// EstimateBitPeriod estimates the clock period of ch in samples from the
// intervals between its edges.
//
// Idle stretches between transactions are much longer than a clock phase,
// so only intervals up to 150% of the shortest interval are taken as half
// bit periods and averaged.
func EstimateBitPeriod(ch *Channel) (halfPeriod, bitPeriod float64, err error) {
	if len(ch.Edges) < minEdges {
		return 0, 0, ErrTooFewEdges
	}

	samples := make([]uint64, 0, len(ch.Edges)-1)
	for i := 1; i < len(ch.Edges); i++ {
		samples = append(samples, ch.Edges[i]-ch.Edges[i-1])
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })

	// drop the lowest event sample, it may be a glitch
	samples = samples[1:]

	limit := samples[0] + samples[0]/2
	var sum uint64
	var n int
	for _, t := range samples {
		if t > limit {
			break
		}
		sum += t
		n++
	}

	halfPeriod = float64(sum) / float64(n)
	return halfPeriod, 2 * halfPeriod, nil
}
