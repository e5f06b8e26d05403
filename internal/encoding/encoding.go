// Package encoding provides zero-copy views between key slices and the raw
// byte regions that back them (mmap'd scratch buffers and key files).
//
// Both views use unsafe native-endian reinterpretation and are only correct
// as a little-endian encoding on little-endian architectures (amd64, arm64).
// PutKeys and Keys are the portable, copying counterparts.
package encoding

import (
	"encoding/binary"
	"unsafe"
)

// KeySize is the encoded size of one key in bytes.
const KeySize = 4

// KeysView reinterprets b as a []uint32 without copying.
// len(b) must be a multiple of KeySize and b must be 4-byte aligned
// (page-aligned mmap regions always are). Returns nil for an empty region.
func KeysView(b []byte) []uint32 {
	if len(b) < KeySize {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), len(b)/KeySize)
}

// BytesView reinterprets keys as a []byte without copying.
func BytesView(keys []uint32) []byte {
	if len(keys) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&keys[0])), len(keys)*KeySize)
}

// PutKeys writes keys into dst as little-endian uint32s.
// dst must be at least len(keys)*KeySize bytes.
func PutKeys(dst []byte, keys []uint32) {
	if len(keys) == 0 {
		return
	}
	_ = dst[len(keys)*KeySize-1]
	for i, k := range keys {
		binary.LittleEndian.PutUint32(dst[i*KeySize:], k)
	}
}

// Keys decodes little-endian uint32s from src into dst.
// src must be at least len(dst)*KeySize bytes.
func Keys(dst []uint32, src []byte) {
	if len(dst) == 0 {
		return
	}
	_ = src[len(dst)*KeySize-1]
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(src[i*KeySize:])
	}
}
