package lsdshuffle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/encoding"
)

const (
	// keyFileMagic is "LSDK" in little-endian.
	keyFileMagic = uint32(0x4B44534C)

	// keyFileVersion is the current key file format version.
	keyFileVersion = uint16(0x0001)

	keyFileHeaderSize = 32
	keyFileFooterSize = 8

	// flagSorted marks a file whose keys are in ascending order.
	flagSorted = uint16(1 << 0)
)

// keyFileHeader is the 32-byte key file header.
//
// Layout:
//
//	Offset  Size  Field     Type
//	0       4     Magic     0x4B44534C ("LSDK")
//	4       2     Version   0x0001
//	6       2     Flags     uint16_le (bit 0 = sorted)
//	8       8     Count     uint64_le
//	16      16    Reserved  [16]byte (zero)
//
// The header is followed by Count little-endian uint32 keys and an 8-byte
// footer holding the xxHash64 of the key region.
type keyFileHeader struct {
	Magic    uint32
	Version  uint16
	Flags    uint16
	Count    uint64
	Reserved [16]byte
}

func (h *keyFileHeader) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.Count)
	copy(buf[16:32], h.Reserved[:])
}

func decodeKeyFileHeader(buf []byte) (*keyFileHeader, error) {
	if len(buf) < keyFileHeaderSize {
		return nil, streamerrors.ErrTruncatedFile
	}

	h := &keyFileHeader{
		Magic:   binary.LittleEndian.Uint32(buf[0:4]),
		Version: binary.LittleEndian.Uint16(buf[4:6]),
		Flags:   binary.LittleEndian.Uint16(buf[6:8]),
		Count:   binary.LittleEndian.Uint64(buf[8:16]),
	}
	copy(h.Reserved[:], buf[16:32])

	if h.Magic != keyFileMagic {
		return nil, streamerrors.ErrInvalidMagic
	}
	if h.Version != keyFileVersion {
		return nil, streamerrors.ErrInvalidVersion
	}
	if h.Count > math.MaxUint32 {
		return nil, streamerrors.ErrTooManyKeys
	}
	return h, nil
}

// keyFileSize returns the exact size of a key file holding n keys.
func keyFileSize(n int) int64 {
	return keyFileHeaderSize + int64(n)*encoding.KeySize + keyFileFooterSize
}

// WriteKeyFile writes keys to path in the key file format, replacing any
// existing file. sorted is recorded in the header flags and returned by
// ReadKeyFile; it is not checked against the keys.
func WriteKeyFile(path string, keys []uint32, sorted bool) (err error) {
	if uint64(len(keys)) > math.MaxUint32 {
		return streamerrors.ErrTooManyKeys
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close key file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	size := keyFileSize(len(keys))
	if err := fallocateFile(file, size); err != nil {
		return fmt.Errorf("pre-allocate key file: %w", err)
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		return fmt.Errorf("mmap key file: %w", err)
	}

	h := keyFileHeader{
		Magic:   keyFileMagic,
		Version: keyFileVersion,
		Count:   uint64(len(keys)),
	}
	if sorted {
		h.Flags |= flagSorted
	}
	h.encodeTo(mm[:keyFileHeaderSize])

	region := mm[keyFileHeaderSize : size-keyFileFooterSize]
	encoding.PutKeys(region, keys)
	binary.LittleEndian.PutUint64(mm[size-keyFileFooterSize:], xxhash.Sum64(region))

	// Flush dirty pages to file (ensures writes visible before unmap)
	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap())
	}
	if err := mm.Unmap(); err != nil {
		return fmt.Errorf("mmap unmap failed: %w", err)
	}
	return nil
}

// ReadKeyFile reads a key file written by WriteKeyFile, returning its keys
// and sorted flag. The file is validated in full: header, exact size, and
// the key region checksum.
func ReadKeyFile(path string) (keys []uint32, sorted bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open key file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat key file: %w", err)
	}
	if info.Size() < keyFileHeaderSize+keyFileFooterSize {
		return nil, false, streamerrors.ErrTruncatedFile
	}

	fadviseSequential(int(file.Fd()), 0, info.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, false, fmt.Errorf("mmap key file: %w", err)
	}
	defer func() {
		if unmapErr := mm.Unmap(); unmapErr != nil && err == nil {
			err = fmt.Errorf("mmap unmap failed: %w", unmapErr)
		}
	}()

	h, err := decodeKeyFileHeader(mm)
	if err != nil {
		return nil, false, err
	}

	n := int(h.Count)
	size := keyFileSize(n)
	if int64(len(mm)) < size {
		return nil, false, streamerrors.ErrTruncatedFile
	}
	if int64(len(mm)) > size {
		return nil, false, fmt.Errorf("%w: %d trailing bytes", streamerrors.ErrTruncatedFile, int64(len(mm))-size)
	}

	region := mm[keyFileHeaderSize : size-keyFileFooterSize]
	want := binary.LittleEndian.Uint64(mm[size-keyFileFooterSize:])
	if got := xxhash.Sum64(region); got != want {
		return nil, false, fmt.Errorf("%w: key region hash %016x, footer %016x", streamerrors.ErrChecksumFailed, got, want)
	}

	keys = make([]uint32, n)
	encoding.Keys(keys, region)
	return keys, h.Flags&flagSorted != 0, nil
}
