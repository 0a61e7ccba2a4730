/*
NAME
  search.go

DESCRIPTION
  search.go contains the look-ahead scoring used by the beam-search encoder:
  a bounded recursive minimum-cost search with killer-move ordering, and the
  top-K selection used to threshold candidates.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package ima

import "math"

// searchMinScore returns the minimum total cost reachable from enc after
// consuming depth further samples from samples. bound is an upper bound on
// the minimum: branches whose partial cost already exceeds it are not
// explored, which is sound because cost is monotone non-decreasing with
// depth. The recursion is value-returning and bounded by MaxSearchDepth.
func searchMinScore(enc coreEncoder, samples []int16, depth int, bound float64) float64 {
	if depth == 0 {
		return enc.totalCost
	}

	// The IMA reference nibble is tried first. It is usually the best move,
	// so trying it first maximises pruning of the rest.
	killer := enc.greedyNibble(samples[0])
	killerCost := enc.totalCost + enc.cost(samples[0], killer)

	// At depth 1 no further expansion can improve on the reference nibble.
	if depth == 1 {
		return killerCost
	}

	min := bound
	if killerCost < min {
		next := enc
		next.update(samples[0], killer)
		if s := searchMinScore(next, samples[1:], depth-1, min); s < min {
			min = s
		}
	}

	// Only nibbles sharing the killer's sign are explored: flipping the sign
	// of the prediction error is essentially never locally optimal.
	for mag := uint8(0); mag <= 7; mag++ {
		nibble := mag | (killer & 8)
		if nibble == killer {
			continue
		}
		if enc.totalCost+enc.cost(samples[0], nibble) < min {
			next := enc
			next.update(samples[0], nibble)
			if s := searchMinScore(next, samples[1:], depth-1, min); s < min {
				min = s
			}
		}
	}

	return min
}

// evaluateScore advances enc by nibble and returns the minimum cost
// reachable in depth-1 further samples.
func evaluateScore(enc coreEncoder, samples []int16, depth int, nibble uint8) float64 {
	enc.update(samples[0], nibble)
	return searchMinScore(enc, samples[1:], depth-1, math.MaxFloat64)
}

// selectTopK returns the k-th smallest element of data (zero-indexed),
// partially sorting data in place by Hoare selection.
func selectTopK(data []float64, k int) float64 {
	left, right := 0, len(data)-1
	for left < right {
		x := data[k]
		i, j := left, right
		for {
			for data[i] < x {
				i++
			}
			for x < data[j] {
				j--
			}
			if i >= j {
				break
			}
			data[i], data[j] = data[j], data[i]
			i++
			j--
		}
		if i <= k {
			left = j + 1
		}
		if k <= j {
			right = i - 1
		}
	}
	return data[k]
}
