package store

import (
	"github.com/klauspost/compress/zstd"
)

type compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	enabled bool
}

func newCompressor(enabled bool) (*compressor, error) {
	if !enabled {
		return &compressor{enabled: false}, nil
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &compressor{
		encoder: encoder,
		decoder: decoder,
		enabled: true,
	}, nil
}

// compress returns the input unchanged when compression is disabled, the
// data is tiny, or zstd would not shrink it. Objects carry a one-byte
// framing prefix so decompress can tell the cases apart.
func (c *compressor) compress(data []byte) []byte {
	if !c.enabled || len(data) < 128 {
		return frame(frameRaw, data)
	}

	compressed := c.encoder.EncodeAll(data, make([]byte, 0, len(data)))
	if len(compressed) >= len(data) {
		return frame(frameRaw, data)
	}
	return frame(frameZstd, compressed)
}

func (c *compressor) decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	kind, body := data[0], data[1:]
	if kind != frameZstd {
		return body, nil
	}
	return c.decoder.DecodeAll(body, nil)
}

func (c *compressor) close() {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

const (
	frameRaw  byte = 0
	frameZstd byte = 1
)

func frame(kind byte, body []byte) []byte {
	out := make([]byte, 0, len(body)+1)
	out = append(out, kind)
	return append(out, body...)
}
