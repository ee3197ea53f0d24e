package flat

import (
	"encoding/binary"
	"math"

	"github.com/fwojciec/docqa"
)

// EncodeVector serializes v as little-endian float32 values. The bit
// pattern of every component is kept, so decoded vectors rank identically.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "vector encoding has %d bytes, not a multiple of 4", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
