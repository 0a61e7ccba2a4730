/*
NAME
  decoder.go

DESCRIPTION
  decoder.go contains block and whole-file decoding of IMA-ADPCM WAVE
  streams into 16-bit PCM planes.

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
	"encoding/binary"

	"github.com/pkg/errors"
)

// Decoder decodes IMA-ADPCM WAVE streams. A Decoder is exclusively owned by
// its caller; it is not safe for concurrent use.
type Decoder struct {
	header WavHeader
	core   [MaxChannels]coreDecoder
}

// NewDecoder returns a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Header returns the header parsed by the last DecodeWhole call.
func (d *Decoder) Header() WavHeader {
	return d.header
}

// readBlockHeader reads the 4-byte per-channel block header: a 16-bit
// literal sample, a step size index and a reserved byte.
func readBlockHeader(data []byte, core *coreDecoder) error {
	core.sampleVal = int16(binary.LittleEndian.Uint16(data))
	idx := int8(data[2])
	if idx < 0 || int(idx) >= stepsizeTableSize {
		return errors.Wrapf(ErrInvalidFormat, "step size index %d out of range", idx)
	}
	core.stepsizeIndex = idx
	if data[3] != 0 {
		return errors.Wrapf(ErrInvalidFormat, "nonzero reserved byte %#x in block header", data[3])
	}
	return nil
}

// decodeBlockMono decodes one mono block of at most len(out[0]) samples and
// returns the number of samples decoded.
func (d *Decoder) decodeBlockMono(data []byte, out [][]int16) (int, error) {
	if len(data) < 4 {
		return 0, errors.Wrapf(ErrInsufficientData, "block of %d bytes shorter than block header", len(data))
	}

	// One byte of payload carries two samples; the block header carries one.
	n := (len(data)-4)*2 + 1
	if n > len(out[0]) {
		n = len(out[0])
	}

	core := &d.core[0]
	if err := readBlockHeader(data, core); err != nil {
		return 0, err
	}

	// The first sample is transmitted as a literal.
	out[0][0] = core.sampleVal

	pos := 4
	for smpl := 1; smpl < n; smpl += 2 {
		b := data[pos]
		pos++
		out[0][smpl] = core.decodeSample(b & 0xF)
		if smpl+1 < n {
			out[0][smpl+1] = core.decodeSample(b >> 4)
		}
	}

	return n, nil
}

// decodeBlockStereo decodes one stereo block of at most len(out[ch]) samples
// per channel and returns the number of samples decoded. Payload words
// alternate between channels in 4-byte groups.
func (d *Decoder) decodeBlockStereo(data []byte, out [][]int16) (int, error) {
	if len(data) < 8 {
		return 0, errors.Wrapf(ErrInsufficientData, "block of %d bytes shorter than block headers", len(data))
	}

	// One byte of payload carries one sample across the two channels.
	n := (len(data) - 8) + 1
	if n > len(out[0]) {
		n = len(out[0])
	}

	for ch := 0; ch < 2; ch++ {
		if err := readBlockHeader(data[4*ch:], &d.core[ch]); err != nil {
			return 0, err
		}
		out[ch][0] = d.core[ch].sampleVal
	}

	pos := 8
	for smpl := 1; smpl < n; smpl += 8 {
		for ch := 0; ch < 2; ch++ {
			var w uint32
			if pos+4 <= len(data) {
				w = binary.LittleEndian.Uint32(data[pos:])
			} else {
				// Truncated final word; missing nibbles decode as zero.
				for k := 0; pos+k < len(data); k++ {
					w |= uint32(data[pos+k]) << (8 * k)
				}
			}
			pos += 4
			for k := 0; k < 8 && smpl+k < n; k++ {
				out[ch][smpl+k] = d.core[ch].decodeSample(uint8(w>>(4*k)) & 0xF)
			}
		}
	}

	return n, nil
}

// decodeBlock decodes one block, dispatching on the channel count of the
// parsed header.
func (d *Decoder) decodeBlock(data []byte, out [][]int16) (int, error) {
	switch d.header.NumChannels {
	case 1:
		return d.decodeBlockMono(data, out)
	case 2:
		return d.decodeBlockStereo(data, out)
	default:
		return 0, errors.Wrapf(ErrInvalidFormat, "unsupported channel count %d", d.header.NumChannels)
	}
}

// DecodeWhole decodes a complete IMA-ADPCM WAVE stream, header included,
// into the pre-sized per-channel planes of out. Each plane must hold at
// least the header's per-channel sample count. Blocks are written to out as
// they are decoded; an error in a later block leaves the earlier blocks'
// samples in out.
func (d *Decoder) DecodeWhole(data []byte, out [][]int16) error {
	if d == nil || data == nil || out == nil {
		return ErrInvalidArgument
	}

	h, err := DecodeHeader(data)
	if err != nil {
		return err
	}
	d.header = h

	if len(out) < h.NumChannels {
		return errors.Wrapf(ErrInsufficientBuffer, "have %d output channels, need %d", len(out), h.NumChannels)
	}
	for ch := 0; ch < h.NumChannels; ch++ {
		if out[ch] == nil {
			return ErrInvalidArgument
		}
		if len(out[ch]) < h.NumSamples {
			return errors.Wrapf(ErrInsufficientBuffer, "output plane %d holds %d samples, need %d", ch, len(out[ch]), h.NumSamples)
		}
	}

	var planes [MaxChannels][]int16
	progress, readOffset := 0, h.HeaderSize
	for progress < h.NumSamples && readOffset < len(data) {
		readBlockSize := len(data) - readOffset
		if readBlockSize > h.BlockSize {
			readBlockSize = h.BlockSize
		}
		for ch := 0; ch < h.NumChannels; ch++ {
			planes[ch] = out[ch][progress:h.NumSamples]
		}

		n, err := d.decodeBlock(data[readOffset:readOffset+readBlockSize], planes[:h.NumChannels])
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}

		readOffset += readBlockSize
		progress += n
	}

	return nil
}
