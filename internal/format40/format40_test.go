// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package format40

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Each case pins one of the canonical worked vectors byte-for-byte.
func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		patch []byte
		want  []byte
	}{
		{
			name:  "xor byte block",
			buf:   []byte{0x41, 0x42, 0x43, 0x44},
			patch: []byte{0x02, 0x01, 0x02, 0x80, 0x00, 0x00},
			want:  []byte{0x40, 0x40, 0x43, 0x44},
		},
		{
			name:  "run fill",
			buf:   []byte{0x41, 0x42, 0x43, 0x44},
			patch: []byte{0x00, 0x03, 0xFF, 0x80, 0x00, 0x00},
			want:  []byte{0xBE, 0xBD, 0xBC, 0x44},
		},
		{
			name:  "skip then xor",
			buf:   []byte{0x41, 0x42, 0x43, 0x44},
			patch: []byte{0x82, 0x01, 0x01, 0x80, 0x00, 0x00},
			want:  []byte{0x41, 0x42, 0x42, 0x44},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := append([]byte(nil), tt.buf...)
			if err := Apply(tt.patch, buf); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if diff := cmp.Diff(tt.want, buf); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyEmptyPatchIsNoop(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	want := append([]byte(nil), buf...)
	if err := Apply([]byte{0x80, 0x00, 0x00}, buf); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyOverflow(t *testing.T) {
	buf := []byte{1, 2}
	patch := []byte{0x05, 1, 2, 3, 4, 5}
	if err := Apply(patch, buf); err == nil {
		t.Fatal("want OutputOverflow for patch exceeding buffer length")
	}
}
