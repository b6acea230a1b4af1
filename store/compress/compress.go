// Package compress encodes room text for the backends that persist raw bytes.
// Each encoding starts with a byte naming its compressor,
// so rooms written under one configuration remain readable under another.
package compress

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel/bookmark"
)

// Compressor compresses and uncompresses byte strings.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Uncompress([]byte) ([]byte, error)
}

// Kind identifies a Compressor in an encoding.
type Kind byte

const (
	None Kind = iota
	KindLZW
	KindFlate
	KindZstd
	KindS2
)

var names = map[string]Kind{
	"none":  None,
	"lzw":   KindLZW,
	"flate": KindFlate,
	"zstd":  KindZstd,
	"s2":    KindS2,
}

func (k Kind) String() string {
	for name, kind := range names {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

func (k Kind) compressor() (Compressor, error) {
	switch k {
	case None:
		return identity{}, nil
	case KindLZW:
		return LZW{}, nil
	case KindFlate:
		return Flate{Level: -1}, nil
	case KindZstd:
		return Zstd{}, nil
	case KindS2:
		return S2{}, nil
	}
	return nil, errors.Errorf("unknown compressor kind %d", byte(k))
}

// ParseKind looks up a compressor by name.
// The empty string means None.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return None, nil
	}
	k, ok := names[name]
	if !ok {
		return None, errors.Errorf("unknown compressor %q", name)
	}
	return k, nil
}

// FromConfig reads the optional "compress" parameter of a backend configuration.
func FromConfig(conf map[string]interface{}) (Kind, error) {
	name, _ := conf["compress"].(string)
	return ParseKind(name)
}

// Encode compresses r with the compressor of kind k.
func Encode(k Kind, r bookmark.Room) ([]byte, error) {
	c, err := k.compressor()
	if err != nil {
		return nil, err
	}
	b, err := c.Compress([]byte(r))
	if err != nil {
		return nil, errors.Wrapf(err, "compressing with %s", k)
	}
	return append([]byte{byte(k)}, b...), nil
}

// Decode reverses Encode, whatever compressor it used.
func Decode(b []byte) (bookmark.Room, error) {
	if len(b) == 0 {
		return "", errors.New("empty encoding")
	}
	k := Kind(b[0])
	c, err := k.compressor()
	if err != nil {
		return "", err
	}
	out, err := c.Uncompress(b[1:])
	if err != nil {
		return "", errors.Wrapf(err, "uncompressing with %s", k)
	}
	return bookmark.Room(out), nil
}
