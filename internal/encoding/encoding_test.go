package encoding

import (
	"slices"
	"testing"
)

func TestPutKeysLittleEndian(t *testing.T) {
	keys := []uint32{0x04030201, 0xDDCCBBAA}
	buf := make([]byte, len(keys)*KeySize)
	PutKeys(buf, keys)

	want := []byte{0x01, 0x02, 0x03, 0x04, 0xAA, 0xBB, 0xCC, 0xDD}
	if !slices.Equal(buf, want) {
		t.Fatalf("PutKeys = % X, want % X", buf, want)
	}

	got := make([]uint32, len(keys))
	Keys(got, buf)
	if !slices.Equal(got, keys) {
		t.Fatalf("Keys = %X, want %X", got, keys)
	}
}

// TestViewsShareMemory verifies that writes through one view are visible
// through the other, with no copy in between.
func TestViewsShareMemory(t *testing.T) {
	keys := make([]uint32, 8)
	b := BytesView(keys)
	if len(b) != len(keys)*KeySize {
		t.Fatalf("BytesView length = %d, want %d", len(b), len(keys)*KeySize)
	}

	back := KeysView(b)
	if len(back) != len(keys) {
		t.Fatalf("KeysView length = %d, want %d", len(back), len(keys))
	}
	back[3] = 0xCAFEBABE
	if keys[3] != 0xCAFEBABE {
		t.Errorf("write through KeysView not visible: keys[3] = 0x%X", keys[3])
	}
}

// TestViewsMatchPortableEncoding checks the unsafe view agrees with the
// little-endian encoding on the test host.
func TestViewsMatchPortableEncoding(t *testing.T) {
	keys := []uint32{1, 0x80000000, 0xFFFFFFFF, 0x12345678}
	buf := make([]byte, len(keys)*KeySize)
	PutKeys(buf, keys)
	if !slices.Equal(BytesView(keys), buf) {
		t.Skip("host is not little-endian")
	}
}

func TestEmptyViews(t *testing.T) {
	if v := KeysView(nil); v != nil {
		t.Errorf("KeysView(nil) = %v, want nil", v)
	}
	if v := BytesView(nil); v != nil {
		t.Errorf("BytesView(nil) = %v, want nil", v)
	}
}
