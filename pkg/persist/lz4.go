package persist

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Extension is the file extension for LZ4-framed gob files.
const lz4Extension = ".gob.lz4"

// LZ4Codec implements Codec using gob encoding inside an LZ4 frame.
// Snapshots compress well: histograms are repetitive small integers.
type LZ4Codec struct{}

// NewLZ4Codec creates an LZ4-compressed gob codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec.Encode with gob encoding behind an LZ4 writer.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	compressor := lz4.NewWriter(w)

	err := gob.NewEncoder(compressor).Encode(state)
	if err != nil {
		return fmt.Errorf("lz4 gob encode: %w", err)
	}

	err = compressor.Close()
	if err != nil {
		return fmt.Errorf("lz4 flush: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode for LZ4-framed gob data.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	err := gob.NewDecoder(lz4.NewReader(r)).Decode(state)
	if err != nil {
		return fmt.Errorf("lz4 gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for LZ4-framed gob files.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}
