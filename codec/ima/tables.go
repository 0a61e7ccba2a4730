/*
NAME
  tables.go

DESCRIPTION
  tables.go contains the IMA-ADPCM quantisation tables shared by the encoder
  and the decoder.

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

// Limits of the codec. Channels and bit depth are fixed by the wire format;
// beam width and depth bound the encoder's search.
const (
	MaxChannels        = 2
	BitsPerSample      = 4
	MaxSearchBeamWidth = 16
	MaxSearchDepth     = 8
)

const (
	numCodes     = 1 << BitsPerSample
	halfNumCodes = numCodes / 2
)

// Table of index changes (see IMA spec).
var indexTable = [numCodes]int8{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// Quantizer step size table (see IMA spec).
var stepsizeTable = [89]int32{
	7, 8, 9, 10, 11, 12, 13, 14,
	16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66,
	73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411,
	1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484,
	7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794,
	32767,
}

const stepsizeTableSize = len(stepsizeTable)

// qdiffTable[idx][nibble] is the signed difference applied to the predictor
// when nibble is emitted at step size index idx, that is
// ±(stepsize*(2*mag+1))>>3 with mag the low three bits of the nibble.
var qdiffTable = func() (t [stepsizeTableSize][numCodes]int32) {
	for idx, step := range stepsizeTable {
		for nib := 0; nib < numCodes; nib++ {
			d := (step * int32(2*(nib&7)+1)) >> 3
			if nib&8 != 0 {
				d = -d
			}
			t[idx][nib] = d
		}
	}
	return t
}()
