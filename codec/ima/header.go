/*
NAME
  header.go

DESCRIPTION
  header.go contains parsing and emission of the RIFF/WAVE header used by
  IMA-ADPCM (format tag 17) files.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

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

// HeaderSize is the size in bytes of an emitted header: RIFF/WAVE, a fmt
// chunk of declared size 20, a fact chunk of declared size 4, and the data
// chunk id and size.
const HeaderSize = 60

const formatTagIMAADPCM = 17

// WavHeader describes an IMA-ADPCM RIFF/WAVE stream. SamplesPerBlock counts
// the header-embedded literal sample; NumSamples is per channel; HeaderSize
// is the byte offset at which the data payload starts.
type WavHeader struct {
	NumChannels     int
	SamplingRate    int
	BytesPerSec     int
	BlockSize       int
	BitsPerSample   int
	SamplesPerBlock int
	NumSamples      int
	HeaderSize      int
}

// dataSizeBytes returns the byte size occupied by n samples at the given
// bit depth, rounded up to whole bytes.
func dataSizeBytes(n, bitsPerSample int) int {
	return (n*bitsPerSample + 7) / 8
}

// reader is a little-endian cursor over a byte slice. Reads past the end
// return ErrInsufficientData.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) u8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, ErrInsufficientData
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, ErrInsufficientData
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, ErrInsufficientData
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) skip(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		return ErrInsufficientData
	}
	r.pos += n
	return nil
}

// DecodeHeader parses the header of an IMA-ADPCM WAVE stream. Chunks other
// than fmt, fact and data are skipped by their declared size. When fact is
// absent the total sample count is estimated from the data chunk size.
func DecodeHeader(data []byte) (WavHeader, error) {
	var h WavHeader
	if data == nil {
		return h, ErrInvalidArgument
	}
	r := &reader{buf: data}

	id, err := r.u32()
	if err != nil {
		return h, err
	}
	if id != fourCC('R', 'I', 'F', 'F') {
		return h, errors.Wrap(ErrInvalidFormat, "invalid RIFF chunk id")
	}
	// RIFF chunk size is not used.
	if _, err := r.u32(); err != nil {
		return h, err
	}

	id, err = r.u32()
	if err != nil {
		return h, err
	}
	if id != fourCC('W', 'A', 'V', 'E') {
		return h, errors.Wrap(ErrInvalidFormat, "invalid WAVE chunk id")
	}

	id, err = r.u32()
	if err != nil {
		return h, err
	}
	if id != fourCC('f', 'm', 't', ' ') {
		return h, errors.Wrap(ErrInvalidFormat, "invalid fmt chunk id")
	}
	fmtSize, err := r.u32()
	if err != nil {
		return h, err
	}
	if uint64(len(data)) <= uint64(fmtSize) {
		return h, errors.Wrapf(ErrInsufficientData, "fmt chunk size %d exceeds data size %d", fmtSize, len(data))
	}

	tag, err := r.u16()
	if err != nil {
		return h, err
	}
	if tag != formatTagIMAADPCM {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported format tag %d", tag)
	}
	nch, err := r.u16()
	if err != nil {
		return h, err
	}
	if nch > MaxChannels {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported channel count %d", nch)
	}
	h.NumChannels = int(nch)
	rate, err := r.u32()
	if err != nil {
		return h, err
	}
	h.SamplingRate = int(rate)
	bps, err := r.u32()
	if err != nil {
		return h, err
	}
	h.BytesPerSec = int(bps)
	bs, err := r.u16()
	if err != nil {
		return h, err
	}
	h.BlockSize = int(bs)
	bits, err := r.u16()
	if err != nil {
		return h, err
	}
	if bits != BitsPerSample {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported bit depth %d", bits)
	}
	h.BitsPerSample = int(bits)
	extra, err := r.u16()
	if err != nil {
		return h, err
	}
	if extra != 2 {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported fmt chunk extra size %d", extra)
	}
	spb, err := r.u16()
	if err != nil {
		return h, err
	}
	h.SamplesPerBlock = int(spb)

	// Enumerate chunks until data, picking up an optional fact chunk.
	foundFact := false
	for {
		id, err = r.u32()
		if err != nil {
			return h, err
		}
		if id == fourCC('d', 'a', 't', 'a') {
			break
		}
		if id == fourCC('f', 'a', 'c', 't') {
			size, err := r.u32()
			if err != nil {
				return h, err
			}
			if size != 4 {
				return h, errors.Wrapf(ErrInvalidFormat, "unsupported fact chunk size %d", size)
			}
			n, err := r.u32()
			if err != nil {
				return h, err
			}
			h.NumSamples = int(n)
			foundFact = true
			continue
		}
		size, err := r.u32()
		if err != nil {
			return h, err
		}
		if err := r.skip(int(size)); err != nil {
			return h, err
		}
	}

	dataChunkSize, err := r.u32()
	if err != nil {
		return h, err
	}

	if !foundFact {
		if h.BlockSize == 0 {
			return h, errors.Wrap(ErrInvalidFormat, "zero block size")
		}
		// +1 to cover the tail block.
		numBlocks := int(dataChunkSize)/h.BlockSize + 1
		h.NumSamples = h.SamplesPerBlock * numBlocks
	}

	h.HeaderSize = r.pos
	return h, nil
}

// EncodeHeader emits the fixed 60-byte header for h.
func EncodeHeader(h WavHeader) ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if err := putHeader(buf, h); err != nil {
		return nil, err
	}
	return buf, nil
}

// putHeader writes the 60-byte header for h into dst.
func putHeader(dst []byte, h WavHeader) error {
	if dst == nil {
		return ErrInvalidArgument
	}
	if len(dst) < HeaderSize {
		return errors.Wrapf(ErrInsufficientBuffer, "header needs %d bytes, have %d", HeaderSize, len(dst))
	}
	if h.NumChannels < 1 || h.NumChannels > MaxChannels {
		return errors.Wrapf(ErrInvalidFormat, "unsupported channel count %d", h.NumChannels)
	}
	if h.BitsPerSample != BitsPerSample {
		return errors.Wrapf(ErrInvalidFormat, "unsupported bit depth %d", h.BitsPerSample)
	}
	if h.SamplesPerBlock == 0 {
		return errors.Wrap(ErrInvalidFormat, "zero samples per block")
	}
	// The block must be able to hold all of its sample data.
	if dataSizeBytes(h.SamplesPerBlock, h.BitsPerSample) > h.BlockSize {
		return errors.Wrapf(ErrInvalidFormat, "block size %d too small for %d samples", h.BlockSize, h.SamplesPerBlock)
	}

	// The data chunk size counts one block per full samples-per-block unit
	// plus a tail block, less the unused nibble payload of the tail.
	numBlocks := h.NumSamples/h.SamplesPerBlock + 1
	dataChunkSize := h.BlockSize * numBlocks
	tailSamples := h.NumSamples % h.SamplesPerBlock
	dataChunkSize -= dataSizeBytes(h.SamplesPerBlock-tailSamples, h.BitsPerSample)

	binary.LittleEndian.PutUint32(dst[0:], fourCC('R', 'I', 'F', 'F'))
	binary.LittleEndian.PutUint32(dst[4:], uint32(HeaderSize+dataChunkSize-8))
	binary.LittleEndian.PutUint32(dst[8:], fourCC('W', 'A', 'V', 'E'))

	binary.LittleEndian.PutUint32(dst[12:], fourCC('f', 'm', 't', ' '))
	binary.LittleEndian.PutUint32(dst[16:], 20)
	binary.LittleEndian.PutUint16(dst[20:], formatTagIMAADPCM)
	binary.LittleEndian.PutUint16(dst[22:], uint16(h.NumChannels))
	binary.LittleEndian.PutUint32(dst[24:], uint32(h.SamplingRate))
	binary.LittleEndian.PutUint32(dst[28:], uint32(h.BytesPerSec))
	binary.LittleEndian.PutUint16(dst[32:], uint16(h.BlockSize))
	binary.LittleEndian.PutUint16(dst[34:], uint16(h.BitsPerSample))
	binary.LittleEndian.PutUint16(dst[36:], 2)
	binary.LittleEndian.PutUint16(dst[38:], uint16(h.SamplesPerBlock))

	binary.LittleEndian.PutUint32(dst[40:], fourCC('f', 'a', 'c', 't'))
	binary.LittleEndian.PutUint32(dst[44:], 4)
	binary.LittleEndian.PutUint32(dst[48:], uint32(h.NumSamples))

	binary.LittleEndian.PutUint32(dst[52:], fourCC('d', 'a', 't', 'a'))
	binary.LittleEndian.PutUint32(dst[56:], uint32(dataChunkSize))

	return nil
}

func fourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}
