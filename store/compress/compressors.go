package compress

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"io"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

type identity struct{}

func (identity) Compress(inp []byte) ([]byte, error) { return inp, nil }

func (identity) Uncompress(inp []byte) ([]byte, error) { return inp, nil }

// LZW compresses with Lempel-Ziv-Welch.
// Room text has a small alphabet, which suits it.
type LZW struct {
	Order lzw.Order
}

func (l LZW) Compress(inp []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := lzw.NewWriter(buf, l.Order, 8)
	if _, err := w.Write(inp); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l LZW) Uncompress(inp []byte) ([]byte, error) {
	rr := lzw.NewReader(bytes.NewReader(inp), l.Order, 8)
	defer rr.Close()
	return io.ReadAll(rr)
}

// Flate is RFC1951 DEFLATE.
type Flate struct {
	Level int
}

func (f Flate) Compress(inp []byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	level := f.Level
	if level < -2 || level > 9 {
		level = -1
	}
	w, err := flate.NewWriter(buf, level)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(inp); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f Flate) Uncompress(inp []byte) ([]byte, error) {
	rr := flate.NewReader(bytes.NewReader(inp))
	defer rr.Close()
	return io.ReadAll(rr)
}

var (
	zstdEncoderPool = sync.Pool{
		New: func() interface{} {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
			if err != nil {
				panic(err)
			}
			return enc
		},
	}
	zstdDecoderPool = sync.Pool{
		New: func() interface{} {
			dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				panic(err)
			}
			return dec
		},
	}
)

// Zstd is Zstandard at its better-compression level.
type Zstd struct{}

func (Zstd) Compress(inp []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(inp, nil), nil
}

func (Zstd) Uncompress(inp []byte) ([]byte, error) {
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)
	return dec.DecodeAll(inp, nil)
}

// S2 is the Snappy-compatible S2 format, faster than Zstd with less compression.
type S2 struct{}

func (S2) Compress(inp []byte) ([]byte, error) {
	return s2.Encode(nil, inp), nil
}

func (S2) Uncompress(inp []byte) ([]byte, error) {
	return s2.Decode(nil, inp)
}
