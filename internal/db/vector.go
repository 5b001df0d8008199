package db

import (
	"encoding/binary"
	"math"
)

// EncodeVector serializes a vector as little-endian float32 bytes, the layout
// FT.SEARCH expects for FLOAT32 vector fields and query blobs.
func EncodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// DecodeVector parses EncodeVector output. Returns nil on a malformed length.
func DecodeVector(s string) []float32 {
	if len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
