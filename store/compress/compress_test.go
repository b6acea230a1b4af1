package compress

import (
	"strings"
	"testing"

	"github.com/tdjsnelling/babel/bookmark"
)

func TestRoundTrip(t *testing.T) {
	rooms := []bookmark.Room{
		"",
		"1",
		"3k9f0a",
		bookmark.Room(strings.Repeat("q7z0", 2000)),
	}
	for name := range names {
		t.Run(name, func(t *testing.T) {
			k, err := ParseKind(name)
			if err != nil {
				t.Fatal(err)
			}
			for _, r := range rooms {
				b, err := Encode(k, r)
				if err != nil {
					t.Fatal(err)
				}
				if Kind(b[0]) != k {
					t.Errorf("got kind byte %d, want %d", b[0], k)
				}
				got, err := Decode(b)
				if err != nil {
					t.Fatal(err)
				}
				if got != r {
					t.Errorf("room %s: got %s after round trip", r.Short(), got.Short())
				}
			}
		})
	}
}

func TestCompresses(t *testing.T) {
	r := bookmark.Room(strings.Repeat("0123456789abcdef", 1000))
	for _, k := range []Kind{KindLZW, KindFlate, KindZstd, KindS2} {
		b, err := Encode(k, r)
		if err != nil {
			t.Fatal(err)
		}
		if len(b) >= len(r)/2 {
			t.Errorf("%s: %d bytes for a %d-byte repetitive room", k, len(b), len(r))
		}
	}
}

func TestErrors(t *testing.T) {
	if _, err := ParseKind("brotli"); err == nil {
		t.Error("got no error for unknown compressor name")
	}
	if _, err := Decode(nil); err == nil {
		t.Error("got no error for empty encoding")
	}
	if _, err := Decode([]byte{200, 1, 2}); err == nil {
		t.Error("got no error for unknown kind byte")
	}
	if _, err := Decode([]byte{byte(KindZstd), 1, 2, 3}); err == nil {
		t.Error("got no error for corrupt zstd payload")
	}

	k, err := FromConfig(map[string]interface{}{"type": "file"})
	if err != nil || k != None {
		t.Errorf("got %s, %v for absent parameter; want none, nil", k, err)
	}
	k, err = FromConfig(map[string]interface{}{"compress": "s2"})
	if err != nil || k != KindS2 {
		t.Errorf("got %s, %v; want s2, nil", k, err)
	}
}
