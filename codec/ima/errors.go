/*
NAME
  errors.go

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

import "github.com/pkg/errors"

// Error kinds returned by the codec. Returned errors may carry wrapping
// context; callers classify them with errors.Is. EncodeWhole returns no
// output along with an error. DecodeWhole writes each block into the
// caller's planes as it decodes it, so when a block fails, the samples of
// the blocks before it remain in the planes.
var (
	// ErrInvalidArgument means a required input was nil or structurally absent.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidFormat means an input violates a schema invariant, such as an
	// unsupported channel count, bit depth or chunk size.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInsufficientData means the input bytes end before a required field.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInsufficientBuffer means an output buffer is too small to receive
	// the next write.
	ErrInsufficientBuffer = errors.New("insufficient buffer")

	// ErrParameterNotSet means encoding was attempted before SetParameter.
	ErrParameterNotSet = errors.New("encode parameter not set")

	// ErrUnclassified covers impossible states; it should not occur on
	// validated inputs.
	ErrUnclassified = errors.New("unclassified failure")
)
