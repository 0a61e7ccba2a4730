/*
NAME
  decoder_test.go

DESCRIPTION
  decoder_test.go contains tests for block and whole-file IMA-ADPCM
  decoding, including fixtures with hand-checked expected PCM.

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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// monoFixture builds a one-block mono file: header literal sample 100, step
// size index 4, then nibbles 0x4, 0x8, 0x2, 0xF.
func monoFixture(t *testing.T) []byte {
	t.Helper()
	h := WavHeader{
		NumChannels: 1, SamplingRate: 8000, BytesPerSec: 8000,
		BlockSize: 8, BitsPerSample: 4, SamplesPerBlock: 9,
		NumSamples: 5, HeaderSize: HeaderSize,
	}
	b, err := EncodeHeader(h)
	if err != nil {
		t.Fatalf("EncodeHeader() error = %v", err)
	}
	return append(b,
		100, 0, // literal first sample
		4,    // initial step size index
		0,    // reserved
		0x84, // nibbles for samples 1, 2
		0xF2, // nibbles for samples 3, 4
	)
}

// TestDecodeWholeMono decodes the mono fixture and compares against PCM
// worked through the quantiser by hand.
func TestDecodeWholeMono(t *testing.T) {
	out := [][]int16{make([]int16, 5)}
	if err := NewDecoder().DecodeWhole(monoFixture(t), out); err != nil {
		t.Fatalf("DecodeWhole() error = %v", err)
	}

	want := []int16{100, 112, 111, 118, 98}
	if diff := cmp.Diff(want, out[0]); diff != "" {
		t.Errorf("decoded PCM mismatch (-want +got):\n%s", diff)
	}
}

// stereoFixture builds a one-block stereo file with per-channel headers
// (100, index 4) and (-100, index 0), both channels carrying nibbles 0x4,
// 0x8 in their first payload word.
func stereoFixture(t *testing.T) []byte {
	t.Helper()
	h := WavHeader{
		NumChannels: 2, SamplingRate: 44100, BytesPerSec: 44100,
		BlockSize: 16, BitsPerSample: 4, SamplesPerBlock: 9,
		NumSamples: 3, HeaderSize: HeaderSize,
	}
	b, err := EncodeHeader(h)
	if err != nil {
		t.Fatalf("EncodeHeader() error = %v", err)
	}
	return append(b,
		100, 0, 4, 0, // left block header
		0x9C, 0xFF, 0, 0, // right block header: -100, index 0
		0x84, 0, 0, 0, // left payload word
		0x84, 0, 0, 0, // right payload word
	)
}

func TestDecodeWholeStereo(t *testing.T) {
	out := [][]int16{make([]int16, 3), make([]int16, 3)}
	if err := NewDecoder().DecodeWhole(stereoFixture(t), out); err != nil {
		t.Fatalf("DecodeWhole() error = %v", err)
	}

	want := [][]int16{
		{100, 112, 111},
		{-100, -93, -94},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("decoded PCM mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeDeterminism checks repeated decodes of the same bytes produce
// identical PCM.
func TestDecodeDeterminism(t *testing.T) {
	data := monoFixture(t)
	first := [][]int16{make([]int16, 5)}
	second := [][]int16{make([]int16, 5)}
	if err := NewDecoder().DecodeWhole(data, first); err != nil {
		t.Fatalf("DecodeWhole() error = %v", err)
	}
	if err := NewDecoder().DecodeWhole(data, second); err != nil {
		t.Fatalf("DecodeWhole() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("decode not deterministic (-first +second):\n%s", diff)
	}
}

func TestDecodeWholeErrors(t *testing.T) {
	fixture := monoFixture(t)

	reserved := append([]byte(nil), fixture...)
	reserved[HeaderSize+3] = 1

	badIndex := append([]byte(nil), fixture...)
	badIndex[HeaderSize+2] = 89

	tests := []struct {
		name    string
		data    []byte
		out     [][]int16
		wantErr error
	}{
		{name: "nil data", data: nil, out: [][]int16{make([]int16, 5)}, wantErr: ErrInvalidArgument},
		{name: "nil output", data: fixture, out: nil, wantErr: ErrInvalidArgument},
		{name: "nil plane", data: fixture, out: [][]int16{nil}, wantErr: ErrInvalidArgument},
		{name: "no output channels", data: fixture, out: [][]int16{}, wantErr: ErrInsufficientBuffer},
		{name: "short plane", data: fixture, out: [][]int16{make([]int16, 4)}, wantErr: ErrInsufficientBuffer},
		{name: "nonzero reserved byte", data: reserved, out: [][]int16{make([]int16, 5)}, wantErr: ErrInvalidFormat},
		{name: "step size index out of range", data: badIndex, out: [][]int16{make([]int16, 5)}, wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewDecoder().DecodeWhole(tt.data, tt.out); !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeWhole() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestDecoderHeader checks the parsed header is retained on the handle.
func TestDecoderHeader(t *testing.T) {
	d := NewDecoder()
	out := [][]int16{make([]int16, 5)}
	if err := d.DecodeWhole(monoFixture(t), out); err != nil {
		t.Fatalf("DecodeWhole() error = %v", err)
	}
	if h := d.Header(); h.NumChannels != 1 || h.NumSamples != 5 || h.BlockSize != 8 {
		t.Errorf("Header() = %+v", h)
	}
}
