package keygen

import (
	"slices"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, kind := range []Kind{XXH3, Murmur3} {
		t.Run(kind.String(), func(t *testing.T) {
			a := New(kind, 42).Generate(1000)
			b := New(kind, 42).Generate(1000)
			if !slices.Equal(a, b) {
				t.Fatal("same seed produced different keys")
			}

			c := New(kind, 43).Generate(1000)
			if slices.Equal(a, c) {
				t.Fatal("different seeds produced identical keys")
			}
		})
	}
}

// TestFillSubRange verifies a sub-range regenerated from its start index
// matches the same range of a full generation.
func TestFillSubRange(t *testing.T) {
	g := New(XXH3, 7)
	full := g.Generate(500)

	part := make([]uint32, 100)
	g.Fill(part, 250)
	if !slices.Equal(part, full[250:350]) {
		t.Fatal("sub-range fill differs from full generation")
	}
}

func TestKindsDiffer(t *testing.T) {
	a := New(XXH3, 1).Generate(64)
	b := New(Murmur3, 1).Generate(64)
	if slices.Equal(a, b) {
		t.Fatal("xxh3 and murmur3 generators produced identical keys")
	}
}

// TestSpread is a coarse sanity check that keys reach both halves of the
// key space and are not all equal.
func TestSpread(t *testing.T) {
	for _, kind := range []Kind{XXH3, Murmur3} {
		keys := New(kind, 99).Generate(4096)
		var high, low int
		for _, k := range keys {
			if k&0x80000000 != 0 {
				high++
			} else {
				low++
			}
		}
		if high < 1000 || low < 1000 {
			t.Errorf("%v: poor spread, %d high / %d low", kind, high, low)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"xxh3", XXH3, false},
		{"", XXH3, false},
		{"murmur3", Murmur3, false},
		{"fnv", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
