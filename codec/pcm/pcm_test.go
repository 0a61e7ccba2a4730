/*
NAME
  pcm_test.go

DESCRIPTION
  pcm_test.go contains tests for the pcm package.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2025 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package pcm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeinterleave(t *testing.T) {
	tests := []struct {
		name     string
		data     []int
		channels int
		want     [][]int16
		wantErr  bool
	}{
		{name: "mono", data: []int{1, 2, 3}, channels: 1, want: [][]int16{{1, 2, 3}}},
		{name: "stereo", data: []int{1, -1, 2, -2}, channels: 2, want: [][]int16{{1, 2}, {-1, -2}}},
		{name: "empty", data: []int{}, channels: 1, want: [][]int16{{}}},
		{name: "zero channels", data: []int{1}, channels: 0, wantErr: true},
		{name: "ragged", data: []int{1, 2, 3}, channels: 2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Deinterleave(tt.data, tt.channels)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Deinterleave() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Deinterleave() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	planes := [][]int16{
		{0, 100, -100, 32767, -32768},
		{1, 2, 3, 4, 5},
	}
	data, err := Interleave(planes)
	if err != nil {
		t.Fatalf("Interleave() error = %v", err)
	}
	got, err := Deinterleave(data, len(planes))
	if err != nil {
		t.Fatalf("Deinterleave() error = %v", err)
	}
	if diff := cmp.Diff(planes, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestInterleaveErrors(t *testing.T) {
	if _, err := Interleave(nil); err == nil {
		t.Error("Interleave(nil) did not error")
	}
	if _, err := Interleave([][]int16{{1, 2}, {1}}); err == nil {
		t.Error("Interleave() with ragged planes did not error")
	}
}
