// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// FuzzReader exercises Reader.Read against arbitrary byte streams,
// asserting only that decoding never panics and terminates.
func FuzzReader(f *testing.F) {
	f.Add(mustHex(oneBlockStreamHex))
	f.Add(mustHex(twoBlockStreamHex))
	f.Add([]byte("not bgzf"))
	f.Add([]byte{0x1f, 0x8b})

	f.Fuzz(func(t *testing.T, data []byte) {
		r, err := NewReader(bytes.NewReader(data))
		if err != nil {
			return
		}
		buf := make([]byte, 1024)
		for {
			_, err := r.Read(buf)
			if err != nil {
				break
			}
		}
	})
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
