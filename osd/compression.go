package osd

import "github.com/klauspost/compress/zstd"

// compressor wraps a single zstd encoder/decoder pair for whole-particle
// compression. Unlike backend/raid3's block-chunked streaming compressor,
// a particle here is already bounded by one stripe object's size, so there
// is no inventory to build: EncodeAll/DecodeAll operate on the whole buffer
// in one call.
type compressor struct {
	level zstd.EncoderLevel
}

func newCompressor() *compressor {
	return &compressor{level: zstd.SpeedDefault}
}

func (c *compressor) compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (c *compressor) decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
