/*
NAME
  core.go

DESCRIPTION
  core.go contains the single-sample IMA-ADPCM state machine shared by the
  encoder and the decoder.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package ima implements an IMA-ADPCM (WAVE format tag 17) codec with an
// optimizing encoder. The encoder runs a beam search with bounded look-ahead
// over the coder's state machine, choosing per-sample nibbles and the
// per-block initial step size index by a lookahead prediction-error cost.
package ima

// clip16 caps a 32-bit sum at the int16 range instead of wrapping. Callers
// do the addition in 32-bit; doing it in 16-bit would wrap and produce wrong
// output.
func clip16(v int32) int16 {
	switch {
	case v < -32768:
		return -32768
	case v > 32767:
		return 32767
	default:
		return int16(v)
	}
}

// clipIndex caps a step size table index to the table bounds.
func clipIndex(v int) int8 {
	switch {
	case v < 0:
		return 0
	case v > stepsizeTableSize-1:
		return int8(stepsizeTableSize - 1)
	default:
		return int8(v)
	}
}

// coreEncoder is the per-channel coder state, extended with the accumulated
// squared prediction error of the nibble path that produced it. prevSample
// and stepsizeIndex fully determine the next output given a nibble.
type coreEncoder struct {
	prevSample    int16
	stepsizeIndex int8
	totalCost     float64
}

// cost returns the squared prediction error of emitting nibble for sample,
// computed before clipping the predictor.
func (e *coreEncoder) cost(sample int16, nibble uint8) float64 {
	err := float64(qdiffTable[e.stepsizeIndex][nibble] + int32(e.prevSample) - int32(sample))
	return err * err
}

// update advances the state by nibble, accumulating the per-step cost.
func (e *coreEncoder) update(sample int16, nibble uint8) {
	qdiff := qdiffTable[e.stepsizeIndex][nibble]
	e.totalCost += e.cost(sample, nibble)
	e.prevSample = clip16(int32(e.prevSample) + qdiff)
	e.stepsizeIndex = clipIndex(int(e.stepsizeIndex) + int(indexTable[nibble]))
}

// greedyNibble chooses a nibble for sample by the IMA reference
// successive-approximation procedure. This is the killer move of the search
// and the choice the default candidate always follows.
func (e *coreEncoder) greedyNibble(sample int16) uint8 {
	diff := int32(sample) - int32(e.prevSample)
	var nibble uint8
	if diff < 0 {
		nibble = 8
		diff = -diff
	}
	step := stepsizeTable[e.stepsizeIndex]
	mask := uint8(4)
	for i := 0; i < 3; i++ {
		if diff >= step {
			nibble |= mask
			diff -= step
		}
		step >>= 1
		mask >>= 1
	}
	return nibble
}

// coreDecoder is the per-channel decoder state.
type coreDecoder struct {
	sampleVal     int16
	stepsizeIndex int8
}

// decodeSample advances the decoder by one nibble and returns the
// reconstructed sample. The difference is computed without branching on the
// magnitude bits; the inner loop runs once per sample.
func (d *coreDecoder) decodeSample(nibble uint8) int16 {
	predict := int32(d.sampleVal)
	stepsize := stepsizeTable[d.stepsizeIndex]

	d.stepsizeIndex = clipIndex(int(d.stepsizeIndex) + int(indexTable[nibble]))

	// qdiff = stepsize * (delta*2 + 1) / 8
	delta := int32(nibble & 7)
	qdiff := (stepsize * (delta<<1 + 1)) >> 3

	if nibble&8 != 0 {
		predict -= qdiff
	} else {
		predict += qdiff
	}

	d.sampleVal = clip16(predict)
	return d.sampleVal
}
