/*
NAME
  main.go

DESCRIPTION
  imacodec is a command-line transcoder between 16-bit PCM wav and
  IMA-ADPCM wav, with a statistics mode reporting reconstruction error.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/ausocean/adpcm/codec/ima"
	"github.com/ausocean/adpcm/codec/pcm"
	"github.com/ausocean/adpcm/codec/wav"
)

const version = 1

func main() {
	var (
		encode    = pflag.BoolP("encode", "e", false, "Encode mode (PCM wav -> IMA-ADPCM wav)")
		decode    = pflag.BoolP("decode", "d", false, "Decode mode (IMA-ADPCM wav -> PCM wav)")
		stats     = pflag.BoolP("calculate-stats", "c", false, "Calculate statistics mode")
		blockSize = pflag.IntP("block-size", "B", 1024, "Specify encode block size")
		beamWidth = pflag.IntP("search-beam-width", "W", 4, "Specify search beam width in encoding")
		depth     = pflag.IntP("search-depth", "D", 2, "Specify search depth in encoding")
		help      = pflag.BoolP("help", "h", false, "Show command help message")
		showVer   = pflag.BoolP("version", "v", false, "Show version information")
	)
	pflag.Usage = func() {
		fmt.Printf("Usage: %s [options] INPUT_FILE_NAME OUTPUT_FILE_NAME \n", os.Args[0])
		fmt.Println("options:")
		pflag.PrintDefaults()
	}
	l := log.New(os.Stderr)

	// Report option errors (such as trailing garbage in a number) ourselves
	// so that they exit with status 1.
	pflag.CommandLine.Init(os.Args[0], pflag.ContinueOnError)
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		l.Error("invalid option", "error", err)
		os.Exit(1)
	}

	if len(os.Args) == 1 {
		pflag.Usage()
		os.Exit(1)
	}
	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *showVer {
		fmt.Printf("imacodec -- optimizing IMA-ADPCM encoder Version.%d \n", version)
		os.Exit(0)
	}

	if *encode && *decode {
		l.Error("encode and decode mode cannot be specified simultaneously")
		os.Exit(1)
	}

	if *blockSize <= 0 || *blockSize > ima.MaxBlockSize {
		l.Error("block size out of range", "got", *blockSize, "range", fmt.Sprintf("(0,%d]", ima.MaxBlockSize))
		os.Exit(1)
	}
	if *beamWidth <= 0 || *beamWidth > ima.MaxSearchBeamWidth {
		l.Error("search beam width out of range", "got", *beamWidth, "range", fmt.Sprintf("(0,%d]", ima.MaxSearchBeamWidth))
		os.Exit(1)
	}
	if *depth <= 0 || *depth > ima.MaxSearchDepth {
		l.Error("search depth out of range", "got", *depth, "range", fmt.Sprintf("(0,%d]", ima.MaxSearchDepth))
		os.Exit(1)
	}

	input := pflag.Arg(0)
	if input == "" {
		l.Error("input file must be specified")
		os.Exit(1)
	}
	output := pflag.Arg(1)
	if (*encode || *decode) && output == "" {
		l.Error("output file must be specified")
		os.Exit(1)
	}

	var err error
	switch {
	case *encode:
		err = doEncode(input, output, *blockSize, *beamWidth, *depth)
	case *decode:
		err = doDecode(input, output)
	case *stats:
		err = doStats(input, *blockSize, *beamWidth, *depth)
	default:
		l.Error("mode option must be specified")
		os.Exit(1)
	}
	if err != nil {
		l.Error("operation failed", "file", input, "error", err)
		os.Exit(1)
	}
}

// readPlanes loads a 16-bit PCM wav file as per-channel planes.
func readPlanes(path string) (*wav.File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wav.Decode(b)
}

// encodePlanes runs the beam-search encoder over a PCM file.
func encodePlanes(f *wav.File, blockSize, beamWidth, depth int) ([]byte, error) {
	enc, err := ima.NewEncoder(blockSize)
	if err != nil {
		return nil, err
	}
	err = enc.SetParameter(ima.EncodeParameter{
		NumChannels:     len(f.Channels),
		SamplingRate:    int(f.Format.Rate),
		BitsPerSample:   ima.BitsPerSample,
		BlockSize:       blockSize,
		SearchBeamWidth: beamWidth,
		SearchDepth:     depth,
	})
	if err != nil {
		return nil, err
	}
	return enc.EncodeWhole(f.Channels)
}

func doEncode(input, output string, blockSize, beamWidth, depth int) error {
	f, err := readPlanes(input)
	if err != nil {
		return err
	}
	out, err := encodePlanes(f, blockSize, beamWidth, depth)
	if err != nil {
		return err
	}
	return os.WriteFile(output, out, 0644)
}

func doDecode(input, output string) error {
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	h, err := ima.DecodeHeader(b)
	if err != nil {
		return err
	}
	planes := make([][]int16, h.NumChannels)
	for ch := range planes {
		planes[ch] = make([]int16, h.NumSamples)
	}
	if err := ima.NewDecoder().DecodeWhole(b, planes); err != nil {
		return err
	}

	f := &wav.File{
		Format: pcm.BufferFormat{
			SFormat:  pcm.S16_LE,
			Rate:     uint(h.SamplingRate),
			Channels: uint(h.NumChannels),
		},
		Channels: planes,
	}
	out, err := f.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(output, out, 0644)
}

func doStats(input string, blockSize, beamWidth, depth int) error {
	f, err := readPlanes(input)
	if err != nil {
		return err
	}

	enc, err := encodePlanes(f, blockSize, beamWidth, depth)
	if err != nil {
		return err
	}

	rec := make([][]int16, len(f.Channels))
	for ch := range rec {
		rec[ch] = make([]int16, len(f.Channels[ch]))
	}
	if err := ima.NewDecoder().DecodeWhole(enc, rec); err != nil {
		return err
	}

	s, err := pcm.Measure(f.Channels, rec)
	if err != nil {
		return err
	}
	fmt.Printf("RMSE:%f \n", s.RMSE)
	fmt.Printf("PSNR:%f dB\n", s.PSNR)
	fmt.Printf("Spectral SNR:%f dB\n", s.SpectralSNR)
	return nil
}
