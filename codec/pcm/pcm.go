/*
NAME
  pcm.go

DESCRIPTION
  pcm.go contains functions for processing and converting pcm audio.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package pcm provides functions for processing and converting pcm audio.
package pcm

import (
	"github.com/pkg/errors"
)

// SampleFormat is the format that PCM samples can be in.
type SampleFormat int

// Used to represent an unknown format.
const (
	Unknown SampleFormat = -1
)

// Sample formats that we use.
const (
	S16_LE SampleFormat = iota
	S32_LE
	// There are many more:
	// https://linux.die.net/man/1/arecord
	// https://trac.ffmpeg.org/wiki/audio%20types
)

// BufferFormat contains the format for a buffer of PCM data.
type BufferFormat struct {
	SFormat  SampleFormat
	Rate     uint
	Channels uint
}

// Deinterleave converts interleaved 16-bit samples, one int per sample as
// produced by WAV decoding, into per-channel planes. The length of data
// must be a multiple of channels.
func Deinterleave(data []int, channels int) ([][]int16, error) {
	if channels < 1 {
		return nil, errors.Errorf("invalid channel count: %v", channels)
	}
	if len(data)%channels != 0 {
		return nil, errors.Errorf("%v samples do not divide into %v channels", len(data), channels)
	}

	n := len(data) / channels
	planes := make([][]int16, channels)
	for ch := range planes {
		planes[ch] = make([]int16, n)
	}
	for i, v := range data {
		planes[i%channels][i/channels] = int16(v)
	}
	return planes, nil
}

// Interleave converts per-channel planes into interleaved samples, one int
// per sample as consumed by WAV encoding. All planes must have equal length.
func Interleave(planes [][]int16) ([]int, error) {
	if len(planes) == 0 {
		return nil, errors.New("no channel planes given")
	}
	n := len(planes[0])
	for ch, p := range planes {
		if len(p) != n {
			return nil, errors.Errorf("channel %v has %v samples, channel 0 has %v", ch, len(p), n)
		}
	}

	data := make([]int, n*len(planes))
	for ch, p := range planes {
		for i, v := range p {
			data[i*len(planes)+ch] = int(v)
		}
	}
	return data, nil
}
