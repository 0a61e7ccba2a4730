/*
NAME
  wav.go

DESCRIPTION
  wav.go contains functions for reading and writing 16-bit PCM wav audio as
  per-channel sample planes.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package wav provides reading and writing of 16-bit PCM wav audio.
package wav

import (
	"bytes"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/ausocean/adpcm/codec/pcm"
)

const PCMFormat = 1 // PCMFormat defines the value for pcm audio as defined by the wav std.

const bitDepth = 16

var (
	errInvalidFormat   = errors.New("invalid or unsupported audio format")
	errInvalidBitDepth = errors.New("invalid or unsupported bit depth")
	errNoChannels      = errors.New("no channels defined")
)

// File holds 16-bit PCM audio as per-channel planes.
type File struct {
	Format   pcm.BufferFormat
	Channels [][]int16
}

// Decode reads a 16-bit PCM wav file from b and returns its audio as
// per-channel planes.
func Decode(b []byte) (*File, error) {
	d := gowav.NewDecoder(bytes.NewReader(b))
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "could not read PCM buffer")
	}
	if d.WavAudioFormat != PCMFormat {
		return nil, errors.Wrapf(errInvalidFormat, "wav audio format %d", d.WavAudioFormat)
	}
	if d.BitDepth != bitDepth {
		return nil, errors.Wrapf(errInvalidBitDepth, "bit depth %d", d.BitDepth)
	}

	planes, err := pcm.Deinterleave(buf.Data, buf.Format.NumChannels)
	if err != nil {
		return nil, errors.Wrap(err, "could not deinterleave samples")
	}

	return &File{
		Format: pcm.BufferFormat{
			SFormat:  pcm.S16_LE,
			Rate:     uint(buf.Format.SampleRate),
			Channels: uint(buf.Format.NumChannels),
		},
		Channels: planes,
	}, nil
}

// Encode writes f as a 16-bit PCM wav file and returns its bytes.
func (f *File) Encode() ([]byte, error) {
	if len(f.Channels) == 0 {
		return nil, errNoChannels
	}

	data, err := pcm.Interleave(f.Channels)
	if err != nil {
		return nil, errors.Wrap(err, "could not interleave samples")
	}

	ws := &writeSeeker{}
	enc := gowav.NewEncoder(ws, int(f.Format.Rate), bitDepth, len(f.Channels), PCMFormat)
	err = enc.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: len(f.Channels),
			SampleRate:  int(f.Format.Rate),
		},
		SourceBitDepth: bitDepth,
		Data:           data,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not write samples")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "could not finalise wav")
	}

	return ws.Bytes(), nil
}

// writeSeeker implements a memory based io.WriteSeeker.
type writeSeeker struct {
	buf []byte
	pos int
}

// Bytes returns the bytes contained in the writeSeekers buffer.
func (ws *writeSeeker) Bytes() []byte {
	return ws.buf
}

// Write writes len(p) bytes from p to the writeSeeker's buf and returns the number
// of bytes written. If less than len(p) bytes are written, an error is returned.
func (ws *writeSeeker) Write(p []byte) (n int, err error) {
	minCap := ws.pos + len(p)
	if minCap > cap(ws.buf) { // Make sure buf has enough capacity:
		buf2 := make([]byte, len(ws.buf), minCap+len(p)) // add some extra
		copy(buf2, ws.buf)
		ws.buf = buf2
	}
	if minCap > len(ws.buf) {
		ws.buf = ws.buf[:minCap]
	}
	copy(ws.buf[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

// Seek sets the offset for the next Read or Write to offset, interpreted according
// to whence: SeekStart means relative to the start of the file, SeekCurrent means
// relative to the current offset, and SeekEnd means relative to the end. Seek returns
// the new offset relative to the start of the file and an error, if any.
func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	newPos, offs := 0, int(offset)
	switch whence {
	case io.SeekStart:
		newPos = offs
	case io.SeekCurrent:
		newPos = ws.pos + offs
	case io.SeekEnd:
		newPos = len(ws.buf) + offs
	}
	if newPos < 0 {
		return 0, errors.New("negative result pos")
	}
	ws.pos = newPos
	return int64(newPos), nil
}
