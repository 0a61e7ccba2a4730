/*
NAME
  stats.go

DESCRIPTION
  stats.go contains reconstruction-error statistics for comparing original
  PCM audio against a codec round trip.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package pcm

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// fullScale normalises 16-bit samples onto the -1..+1 scale.
const fullScale = 32767.0

// Stats summarises the reconstruction error of a codec round trip.
type Stats struct {
	// RMSE is the root mean squared error on the -1..+1 scale.
	RMSE float64
	// PSNR is the peak signal-to-noise ratio in dB, +Inf for identical audio.
	PSNR float64
	// SpectralSNR is the ratio of windowed signal spectrum power to error
	// spectrum power in dB, +Inf for identical audio.
	SpectralSNR float64
}

// Measure compares reconstructed audio against its reference. Both are
// per-channel planes of equal shape.
func Measure(ref, rec [][]int16) (Stats, error) {
	var s Stats
	if len(ref) == 0 || len(ref) != len(rec) {
		return s, errors.Errorf("have %v reference and %v reconstructed channels", len(ref), len(rec))
	}
	for ch := range ref {
		if len(ref[ch]) != len(rec[ch]) {
			return s, errors.Errorf("channel %v has %v reference and %v reconstructed samples", ch, len(ref[ch]), len(rec[ch]))
		}
		if len(ref[ch]) == 0 {
			return s, errors.Errorf("channel %v is empty", ch)
		}
	}

	sq := make([]float64, 0, len(ref)*len(ref[0]))
	for ch := range ref {
		for i := range ref[ch] {
			d := float64(ref[ch][i])/fullScale - float64(rec[ch][i])/fullScale
			sq = append(sq, d*d)
		}
	}
	s.RMSE = math.Sqrt(stat.Mean(sq, nil))

	s.PSNR = math.Inf(1)
	if s.RMSE > 0 {
		s.PSNR = -20 * math.Log10(s.RMSE)
	}

	s.SpectralSNR = spectralSNR(ref, rec)
	return s, nil
}

// spectralSNR accumulates Hann-windowed power spectra of the signal and of
// the reconstruction error over fixed segments of every channel, returning
// their ratio in dB.
func spectralSNR(ref, rec [][]int16) float64 {
	const segment = 1024

	win := window.Hann(segment)
	seg := make([]float64, segment)
	errSeg := make([]float64, segment)

	var sigPower, errPower float64
	for ch := range ref {
		for off := 0; off+segment <= len(ref[ch]); off += segment {
			for i := 0; i < segment; i++ {
				r := float64(ref[ch][off+i]) / fullScale
				e := r - float64(rec[ch][off+i])/fullScale
				seg[i] = r * win[i]
				errSeg[i] = e * win[i]
			}
			for _, c := range fft.FFTReal(seg) {
				sigPower += real(c)*real(c) + imag(c)*imag(c)
			}
			for _, c := range fft.FFTReal(errSeg) {
				errPower += real(c)*real(c) + imag(c)*imag(c)
			}
		}
	}

	if errPower == 0 {
		return math.Inf(1)
	}
	if sigPower == 0 {
		return 0
	}
	return 10 * math.Log10(sigPower/errPower)
}
