/*
NAME
  encoder.go

DESCRIPTION
  encoder.go contains the beam-search IMA-ADPCM encoder: per-channel
  candidate management, per-block initial step size selection, block packing
  and whole-file encoding.

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
	"math"

	"github.com/pkg/errors"
)

// MaxBlockSize bounds the block size an Encoder can be created for; the
// header stores the block size in 16 bits.
const MaxBlockSize = 65535

// EncodeParameter configures encoding. BitsPerSample must be 4. BlockSize
// is in bytes. SearchBeamWidth is the number of candidate coder states kept
// per sample step, in [1,16]; SearchDepth is the number of future samples
// the cost looks ahead, in [1,8].
type EncodeParameter struct {
	NumChannels     int
	SamplingRate    int
	BitsPerSample   int
	BlockSize       int
	SearchBeamWidth int
	SearchDepth     int
}

// header translates the parameter into a stream header carrying numSamples,
// validating it in the process.
func (p EncodeParameter) header(numSamples int) (WavHeader, error) {
	var h WavHeader
	if p.BitsPerSample != BitsPerSample {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported bit depth %d", p.BitsPerSample)
	}
	if p.NumChannels < 1 || p.NumChannels > MaxChannels {
		return h, errors.Wrapf(ErrInvalidFormat, "unsupported channel count %d", p.NumChannels)
	}
	// Four bytes per channel are taken by the block header; the block must
	// have room for sample data beyond that.
	if p.BlockSize <= p.NumChannels*4 {
		return h, errors.Wrapf(ErrInvalidFormat, "block size %d leaves no sample payload", p.BlockSize)
	}

	blockDataSize := p.BlockSize - p.NumChannels*4
	h.NumChannels = p.NumChannels
	h.SamplingRate = p.SamplingRate
	h.BitsPerSample = p.BitsPerSample
	h.BlockSize = p.BlockSize
	h.NumSamples = numSamples
	// +1 for the literal sample embedded in the block header.
	h.SamplesPerBlock = blockDataSize*8/(p.BitsPerSample*p.NumChannels) + 1
	h.BytesPerSec = p.BlockSize * p.SamplingRate / h.SamplesPerBlock
	h.HeaderSize = HeaderSize
	return h, nil
}

// candidate is one beam slot: a coder state, the step size index chosen at
// sample 0 of the block, and the nibble path that led here.
type candidate struct {
	initStepsizeIndex int8
	enc               coreEncoder
	code              []uint8
}

// Encoder encodes 16-bit PCM planes to IMA-ADPCM. All candidate buffers are
// sized at creation from maxBlockSize; the encode path performs no further
// per-block or per-sample allocation. An Encoder is exclusively owned by
// its caller; it is not safe for concurrent use.
type Encoder struct {
	param        EncodeParameter
	paramSet     bool
	maxBlockSize int

	bestCode      [MaxChannels][]uint8
	bestInitIndex [MaxChannels]int8
	candidate     [MaxSearchBeamWidth]candidate
	backup        [MaxSearchBeamWidth]candidate
	defaultCand   candidate

	score     []float64
	scoreWork []float64
}

// NewEncoder returns an Encoder able to encode blocks of up to maxBlockSize
// bytes.
func NewEncoder(maxBlockSize int) (*Encoder, error) {
	if maxBlockSize <= 0 || maxBlockSize > MaxBlockSize {
		return nil, errors.Wrapf(ErrInvalidArgument, "max block size %d out of range (0,%d]", maxBlockSize, MaxBlockSize)
	}

	e := &Encoder{maxBlockSize: maxBlockSize}

	// A payload byte can carry up to two samples, so nibble paths need twice
	// the block size.
	codeLen := 2 * maxBlockSize
	for i := range e.candidate {
		e.candidate[i].code = make([]uint8, codeLen)
		e.backup[i].code = make([]uint8, codeLen)
	}
	e.defaultCand.code = make([]uint8, codeLen)
	for ch := range e.bestCode {
		e.bestCode[ch] = make([]uint8, codeLen)
	}

	// Shared by the initial step size scan (89 entries) and the per-sample
	// candidate scan (W*8 entries).
	scoreLen := MaxSearchBeamWidth * halfNumCodes
	if scoreLen < stepsizeTableSize {
		scoreLen = stepsizeTableSize
	}
	e.score = make([]float64, scoreLen)
	e.scoreWork = make([]float64, scoreLen)

	return e, nil
}

// SetParameter validates p by round-tripping it through a header and records
// it for subsequent EncodeWhole calls.
func (e *Encoder) SetParameter(p EncodeParameter) error {
	if e == nil {
		return ErrInvalidArgument
	}
	if p.BlockSize > e.maxBlockSize {
		return errors.Wrapf(ErrInvalidFormat, "block size %d exceeds encoder maximum %d", p.BlockSize, e.maxBlockSize)
	}
	if p.SearchBeamWidth < 1 || p.SearchBeamWidth > MaxSearchBeamWidth {
		return errors.Wrapf(ErrInvalidFormat, "search beam width %d out of range [1,%d]", p.SearchBeamWidth, MaxSearchBeamWidth)
	}
	if p.SearchDepth < 1 || p.SearchDepth > MaxSearchDepth {
		return errors.Wrapf(ErrInvalidFormat, "search depth %d out of range [1,%d]", p.SearchDepth, MaxSearchDepth)
	}
	if _, err := p.header(0); err != nil {
		return err
	}
	e.param = p
	e.paramSet = true
	return nil
}

// encodeSamples selects the nibble sequence for one channel of one block by
// beam search and writes it to codeSeq, returning the chosen initial step
// size index. codeSeq[0] is unused; sample 0 is transmitted as a literal.
func (e *Encoder) encodeSamples(input []int16, codeSeq []uint8) (int8, error) {
	if len(input) == 0 || codeSeq == nil {
		return 0, ErrInvalidArgument
	}

	numSamples := len(input)
	beamWidth := e.param.SearchBeamWidth
	depth := e.param.SearchDepth
	def := &e.defaultCand

	// Initial step size selection: score every index by look-ahead from the
	// literal first sample, then keep the first W indices, in ascending index
	// order, whose score does not exceed the selectTopK threshold.
	initDepth := depth
	if initDepth > numSamples-1 {
		initDepth = numSamples - 1
	}
	init := coreEncoder{prevSample: input[0]}
	for i := 0; i < stepsizeTableSize; i++ {
		init.stepsizeIndex = int8(i)
		e.score[i] = searchMinScore(init, input[1:], initDepth, math.MaxFloat64)
	}
	copy(e.scoreWork[:stepsizeTableSize], e.score[:stepsizeTableSize])
	threshold := selectTopK(e.scoreWork[:stepsizeTableSize], beamWidth)

	n, argmin := 0, 0
	minScore := math.MaxFloat64
	for i := 0; i < stepsizeTableSize && n < beamWidth; i++ {
		if e.score[i] <= threshold {
			c := &e.candidate[n]
			c.enc = coreEncoder{prevSample: input[0], stepsizeIndex: int8(i)}
			c.initStepsizeIndex = int8(i)
			if e.score[i] < minScore {
				minScore = e.score[i]
				argmin = n
			}
			n++
		}
	}
	if n != beamWidth {
		return 0, errors.Wrap(ErrUnclassified, "initial step size selection underfilled the beam")
	}

	// The default candidate follows the IMA reference path from the best
	// initial index, guaranteeing the search never does worse than it.
	def.enc = e.candidate[argmin].enc
	def.initStepsizeIndex = e.candidate[argmin].initStepsizeIndex

	for smpl := 1; smpl < numSamples; smpl++ {
		stepDepth := depth
		if stepDepth > numSamples-smpl {
			stepDepth = numSamples - smpl
		}

		// Score each (candidate, magnitude) pair under the candidate's sign.
		for i := 0; i < beamWidth; i++ {
			core := &e.candidate[i].enc
			var sign uint8
			if input[smpl] < core.prevSample {
				sign = 8
			}
			for mag := 0; mag < halfNumCodes; mag++ {
				e.score[i*halfNumCodes+mag] = evaluateScore(*core, input[smpl:], stepDepth, uint8(mag)|sign)
			}
		}

		m := beamWidth * halfNumCodes
		copy(e.scoreWork[:m], e.score[:m])
		threshold = selectTopK(e.scoreWork[:m], beamWidth)
		// Force progress when every score is zero.
		if threshold < math.SmallestNonzeroFloat64 {
			threshold = math.SmallestNonzeroFloat64
		}

		// Snapshot the candidates, then rebuild them from the snapshot so the
		// output set never aliases the set being read.
		for i := 0; i < beamWidth; i++ {
			copy(e.backup[i].code[:smpl], e.candidate[i].code[:smpl])
			e.backup[i].enc = e.candidate[i].enc
			e.backup[i].initStepsizeIndex = e.candidate[i].initStepsizeIndex
		}

		n := 0
	selection:
		for i := 0; i < beamWidth; i++ {
			for mag := 0; mag < halfNumCodes; mag++ {
				if e.score[i*halfNumCodes+mag] > threshold {
					continue
				}
				entry := e.backup[i].enc
				nibble := uint8(mag)
				if input[smpl] < entry.prevSample {
					nibble |= 8
				}
				entry.update(input[smpl], nibble)
				c := &e.candidate[n]
				c.enc = entry
				c.initStepsizeIndex = e.backup[i].initStepsizeIndex
				copy(c.code[:smpl], e.backup[i].code[:smpl])
				c.code[smpl] = nibble
				n++
				if n == beamWidth {
					break selection
				}
			}
		}
		if n != beamWidth {
			return 0, errors.Wrap(ErrUnclassified, "candidate selection underfilled the beam")
		}

		// Advance the default candidate along the IMA reference path.
		nib := def.enc.greedyNibble(input[smpl])
		def.enc.update(input[smpl], nib)
		def.code[smpl] = nib
	}

	// Ties keep the first-seen candidate.
	best := 0
	minCost := math.MaxFloat64
	for i := 0; i < beamWidth; i++ {
		if e.candidate[i].enc.totalCost < minCost {
			minCost = e.candidate[i].enc.totalCost
			best = i
		}
	}
	src := &e.candidate[best]
	if def.enc.totalCost < src.enc.totalCost {
		src = def
	}
	copy(codeSeq[:numSamples], src.code[:numSamples])
	return src.initStepsizeIndex, nil
}

// blockBytes returns the encoded byte size of a block of numSamples samples.
func blockBytes(numSamples, numChannels int) int {
	if numChannels == 1 {
		return 4 + numSamples/2
	}
	return 8 + 8*((numSamples-1+7)/8)
}

// encodeBlock encodes one block of numSamples samples per channel into dst,
// returning the number of bytes written. Trailing nibble slots of the final
// packed byte or word are zero.
func (e *Encoder) encodeBlock(input [][]int16, numSamples int, dst []byte) (int, error) {
	if input == nil || dst == nil || numSamples == 0 {
		return 0, ErrInvalidArgument
	}
	nch := e.param.NumChannels
	if len(dst) < blockBytes(numSamples, nch) {
		return 0, errors.Wrapf(ErrInsufficientBuffer, "block needs %d bytes, have %d", blockBytes(numSamples, nch), len(dst))
	}

	for ch := 0; ch < nch; ch++ {
		idx, err := e.encodeSamples(input[ch][:numSamples], e.bestCode[ch])
		if err != nil {
			return 0, err
		}
		e.bestInitIndex[ch] = idx
	}

	// Block header: per channel, the literal first sample, the chosen
	// initial step size index and a reserved zero byte.
	pos := 0
	for ch := 0; ch < nch; ch++ {
		binary.LittleEndian.PutUint16(dst[pos:], uint16(input[ch][0]))
		dst[pos+2] = byte(e.bestInitIndex[ch])
		dst[pos+3] = 0
		pos += 4
	}

	switch nch {
	case 1:
		code := e.bestCode[0]
		for smpl := 1; smpl < numSamples; smpl += 2 {
			b := code[smpl]
			if smpl+1 < numSamples {
				b |= code[smpl+1] << 4
			}
			dst[pos] = b
			pos++
		}
	case 2:
		for smpl := 1; smpl < numSamples; smpl += 8 {
			for ch := 0; ch < 2; ch++ {
				code := e.bestCode[ch]
				var w uint32
				for k := 0; k < 8 && smpl+k < numSamples; k++ {
					w |= uint32(code[smpl+k]) << (4 * k)
				}
				binary.LittleEndian.PutUint32(dst[pos:], w)
				pos += 4
			}
		}
	default:
		return 0, errors.Wrapf(ErrUnclassified, "unsupported channel count %d", nch)
	}

	return pos, nil
}

// EncodeWhole encodes the per-channel PCM planes of input, header included,
// and returns the encoded stream. All planes must have equal length.
// SetParameter must have been called first.
func (e *Encoder) EncodeWhole(input [][]int16) ([]byte, error) {
	if e == nil || input == nil {
		return nil, ErrInvalidArgument
	}
	if !e.paramSet {
		return nil, ErrParameterNotSet
	}
	nch := e.param.NumChannels
	if len(input) < nch {
		return nil, errors.Wrapf(ErrInvalidArgument, "have %d input channels, need %d", len(input), nch)
	}
	for ch := 0; ch < nch; ch++ {
		if input[ch] == nil {
			return nil, ErrInvalidArgument
		}
		if len(input[ch]) != len(input[0]) {
			return nil, errors.Wrap(ErrInvalidArgument, "input planes differ in length")
		}
	}
	numSamples := len(input[0])

	h, err := e.param.header(numSamples)
	if err != nil {
		return nil, err
	}

	// One output buffer sized for the worst case; the result is sliced to
	// the bytes actually written.
	numBlocks := numSamples/h.SamplesPerBlock + 1
	buf := make([]byte, HeaderSize+numBlocks*h.BlockSize)
	if err := putHeader(buf, h); err != nil {
		return nil, err
	}

	var planes [MaxChannels][]int16
	pos, progress := HeaderSize, 0
	for progress < numSamples {
		n := h.SamplesPerBlock
		if n > numSamples-progress {
			n = numSamples - progress
		}
		for ch := 0; ch < nch; ch++ {
			planes[ch] = input[ch][progress:]
		}

		w, err := e.encodeBlock(planes[:nch], n, buf[pos:])
		if err != nil {
			return nil, err
		}

		pos += w
		progress += n
	}

	return buf[:pos], nil
}
