/*
NAME
  core_test.go

DESCRIPTION
  core_test.go contains tests for the IMA-ADPCM state machine.

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

import "testing"

func TestDecodeSample(t *testing.T) {
	tests := []struct {
		name       string
		sample     int16
		index      int8
		nibble     uint8
		wantSample int16
		wantIndex  int8
	}{
		{name: "zero nibble", sample: 0, index: 0, nibble: 0x0, wantSample: 0, wantIndex: 0},
		{name: "max magnitude", sample: 0, index: 0, nibble: 0x7, wantSample: 13, wantIndex: 8},
		{name: "max magnitude negative", sample: 0, index: 0, nibble: 0xF, wantSample: -13, wantIndex: 8},
		{name: "single step", sample: 0, index: 0, nibble: 0x4, wantSample: 7, wantIndex: 2},
		{name: "mid table", sample: 100, index: 4, nibble: 0x4, wantSample: 112, wantIndex: 6},
		{name: "clip high", sample: 32760, index: 88, nibble: 0x7, wantSample: 32767, wantIndex: 88},
		{name: "clip low", sample: -32760, index: 88, nibble: 0xF, wantSample: -32768, wantIndex: 88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := coreDecoder{sampleVal: tt.sample, stepsizeIndex: tt.index}
			got := d.decodeSample(tt.nibble)
			if got != tt.wantSample {
				t.Errorf("decodeSample() = %v, want %v", got, tt.wantSample)
			}
			if d.stepsizeIndex != tt.wantIndex {
				t.Errorf("stepsizeIndex = %v, want %v", d.stepsizeIndex, tt.wantIndex)
			}
		})
	}
}

func TestGreedyNibble(t *testing.T) {
	tests := []struct {
		name   string
		sample int16
		index  int8
		target int16
		want   uint8
	}{
		{name: "exact", sample: 0, index: 0, target: 0, want: 0x0},
		{name: "all bits", sample: 0, index: 0, target: 13, want: 0x7},
		{name: "all bits negative", sample: 0, index: 0, target: -13, want: 0xF},
		{name: "single step", sample: 0, index: 0, target: 7, want: 0x4},
		{name: "two low bits", sample: 0, index: 0, target: 6, want: 0x3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := coreEncoder{prevSample: tt.sample, stepsizeIndex: tt.index}
			if got := e.greedyNibble(tt.target); got != tt.want {
				t.Errorf("greedyNibble(%v) = %#x, want %#x", tt.target, got, tt.want)
			}
		})
	}
}

// TestGreedySign checks the greedy nibble's sign bit tracks the sign of the
// prediction error for every step size index.
func TestGreedySign(t *testing.T) {
	for idx := 0; idx < stepsizeTableSize; idx++ {
		e := coreEncoder{prevSample: 0, stepsizeIndex: int8(idx)}
		if n := e.greedyNibble(1000); n&8 != 0 {
			t.Errorf("index %v: positive error gave sign bit (nibble %#x)", idx, n)
		}
		if n := e.greedyNibble(-1000); n&8 == 0 {
			t.Errorf("index %v: negative error gave no sign bit (nibble %#x)", idx, n)
		}
	}
}

func TestQdiffTable(t *testing.T) {
	tests := []struct {
		index  int8
		nibble uint8
		want   int32
	}{
		{index: 0, nibble: 0x0, want: 0},
		{index: 0, nibble: 0x7, want: 13},
		{index: 0, nibble: 0xF, want: -13},
		{index: 0, nibble: 0x4, want: 7},
		{index: 88, nibble: 0x4, want: 36862},
		{index: 88, nibble: 0xC, want: -36862},
	}

	for _, tt := range tests {
		if got := qdiffTable[tt.index][tt.nibble]; got != tt.want {
			t.Errorf("qdiffTable[%v][%#x] = %v, want %v", tt.index, tt.nibble, got, tt.want)
		}
	}
}

// TestUpdateCost checks update accumulates exactly the squared prediction
// error of the emitted nibble and advances the state like the decoder.
func TestUpdateCost(t *testing.T) {
	e := coreEncoder{prevSample: 0, stepsizeIndex: 0, totalCost: 2}

	// Nibble 4 from index 0 moves the predictor by 7; target 10 leaves an
	// error of -3.
	if got := e.cost(10, 0x4); got != 9 {
		t.Errorf("cost = %v, want 9", got)
	}
	e.update(10, 0x4)
	if e.totalCost != 11 {
		t.Errorf("totalCost = %v, want 11", e.totalCost)
	}
	if e.prevSample != 7 || e.stepsizeIndex != 2 {
		t.Errorf("state = (%v,%v), want (7,2)", e.prevSample, e.stepsizeIndex)
	}

	// The encoder state transition must agree with the decoder's.
	d := coreDecoder{sampleVal: 0, stepsizeIndex: 0}
	d.decodeSample(0x4)
	if d.sampleVal != e.prevSample || d.stepsizeIndex != e.stepsizeIndex {
		t.Errorf("decoder state (%v,%v) disagrees with encoder state (%v,%v)",
			d.sampleVal, d.stepsizeIndex, e.prevSample, e.stepsizeIndex)
	}
}
