package lsdshuffle

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	streamerrors "github.com/tamirms/lsdshuffle/errors"
	"github.com/tamirms/lsdshuffle/internal/encoding"
)

// ScratchKind selects where the sort's scratch buffer lives.
type ScratchKind uint8

const (
	// ScratchHeap allocates the scratch buffer on the Go heap.
	ScratchHeap ScratchKind = iota

	// ScratchAnon maps an anonymous memory region outside the Go heap.
	// The region is invisible to the garbage collector and is returned to
	// the OS as soon as the sort finishes.
	ScratchAnon

	// ScratchFile maps a temporary file, so the scratch buffer can be paged
	// out to disk when the key set is larger than comfortable RAM.
	ScratchFile
)

// String returns the scratch kind name.
func (k ScratchKind) String() string {
	switch k {
	case ScratchHeap:
		return "heap"
	case ScratchAnon:
		return "anon"
	case ScratchFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseScratchKind maps a scratch kind name to its ScratchKind.
func ParseScratchKind(name string) (ScratchKind, error) {
	switch name {
	case "heap", "":
		return ScratchHeap, nil
	case "anon":
		return ScratchAnon, nil
	case "file":
		return ScratchFile, nil
	}
	return 0, fmt.Errorf("%w: %q (use 'heap', 'anon' or 'file')", streamerrors.ErrUnknownScratch, name)
}

// scratchBuffer is the buffer the round driver shuffles into.
// release must be called exactly once; keys is invalid afterwards.
type scratchBuffer interface {
	keys() []uint32
	release() error
}

// allocScratch allocates a scratch buffer of n keys.
// Every failure is reported as ErrAllocation.
func allocScratch(kind ScratchKind, n int, tempDir string) (scratchBuffer, error) {
	if n == 0 {
		return &heapScratch{}, nil
	}
	switch kind {
	case ScratchHeap:
		return &heapScratch{buf: make([]uint32, n)}, nil
	case ScratchAnon:
		return newAnonScratch(n)
	case ScratchFile:
		return newFileScratch(n, tempDir)
	}
	return nil, fmt.Errorf("%w: %w: %d", streamerrors.ErrAllocation, streamerrors.ErrUnknownScratch, kind)
}

// heapScratch is a plain Go slice.
type heapScratch struct {
	buf []uint32
}

func (h *heapScratch) keys() []uint32 { return h.buf }

func (h *heapScratch) release() error {
	h.buf = nil
	return nil
}

// mmapScratch is a scratch buffer backed by an mmap region, either anonymous
// or over a temporary file.
type mmapScratch struct {
	mmap mmap.MMap
	buf  []uint32 // View into mmap
	file *os.File // nil for anonymous regions
	path string   // "" for anonymous regions and O_TMPFILE files
}

// newAnonScratch maps an anonymous read-write region of n keys.
func newAnonScratch(n int) (*mmapScratch, error) {
	mm, err := mmap.MapRegion(nil, n*encoding.KeySize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: map anonymous scratch: %w", streamerrors.ErrAllocation, err)
	}
	prefaultRegion(mm)
	return &mmapScratch{mmap: mm, buf: encoding.KeysView(mm)}, nil
}

// newFileScratch maps a pre-allocated temporary file of n keys in tempDir.
func newFileScratch(n int, tempDir string) (*mmapScratch, error) {
	s := &mmapScratch{}
	if err := s.createTempFile(tempDir); err != nil {
		return nil, fmt.Errorf("%w: create scratch file: %w", streamerrors.ErrAllocation, err)
	}

	size := int64(n) * encoding.KeySize
	if err := fallocateFile(s.file, size); err != nil {
		primaryErr := fmt.Errorf("%w: pre-allocate scratch file: %w", streamerrors.ErrAllocation, err)
		return nil, errors.Join(primaryErr, s.release())
	}

	mm, err := mmap.MapRegion(s.file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("%w: map scratch file: %w", streamerrors.ErrAllocation, err)
		return nil, errors.Join(primaryErr, s.release())
	}
	s.mmap = mm
	s.buf = encoding.KeysView(mm)
	prefaultRegion(mm)
	return s, nil
}

// createTempFile tries an anonymous O_TMPFILE first and falls back to a
// named temp file that release removes.
func (s *mmapScratch) createTempFile(tempDir string) error {
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	f, err := openTmpFile(tempDir)
	if err == nil {
		s.file = f
		return nil
	}

	f, err = os.CreateTemp(tempDir, "lsdshuffle-*.scratch")
	if err != nil {
		return err
	}
	s.file = f
	s.path = f.Name()
	return nil
}

func (s *mmapScratch) keys() []uint32 { return s.buf }

// release unmaps the region and closes and removes any backing file.
// Idempotent: safe to call multiple times.
func (s *mmapScratch) release() error {
	s.buf = nil
	var unmapErr error
	if s.mmap != nil {
		unmapErr = s.mmap.Unmap()
		s.mmap = nil
	}
	var closeErr error
	if s.file != nil {
		closeErr = s.file.Close()
		s.file = nil
	}
	var removeErr error
	if s.path != "" {
		removeErr = os.Remove(s.path)
		s.path = ""
	}
	return errors.Join(unmapErr, closeErr, removeErr)
}
