// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecache

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// blobDomainKey is the BLAKE3 key for blob ids: the ASCII domain name
// zero-padded to 32 bytes. Changing it changes every id.
var blobDomainKey = [32]byte{
	't', 'r', 'a', 'n', 's', 'p', 'o', 'r', 't', 'd', '.', 'b', 'l', 'o', 'b', 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ID returns the cache id of contents: the lowercase hex BLAKE3 keyed
// hash.
func ID(contents []byte) string {
	hasher, err := blake3.NewKeyed(blobDomainKey[:])
	if err != nil {
		panic("bytecache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(contents)
	return hex.EncodeToString(hasher.Sum(nil))
}
