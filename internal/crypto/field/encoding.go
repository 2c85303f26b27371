package field

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Encode serialises x as re || im, each coordinate little-endian on
// ByteLen bytes.
func (f *Field) Encode(x Element) []byte {
	re, im := x.parts()
	out := make([]byte, 2*f.byteLen)
	putLittleEndian(out[:f.byteLen], re)
	putLittleEndian(out[f.byteLen:], im)
	return out
}

// Decode parses the output of Encode. Coordinates must be canonical (< p).
func (f *Field) Decode(b []byte) (Element, error) {
	if len(b) != 2*f.byteLen {
		return Element{}, fmt.Errorf("%w: got %d bytes, want %d", ErrEncoding, len(b), 2*f.byteLen)
	}

	re := readLittleEndian(b[:f.byteLen])
	im := readLittleEndian(b[f.byteLen:])
	if re.Cmp(f.p) >= 0 || im.Cmp(f.p) >= 0 {
		return Element{}, fmt.Errorf("%w: coordinate not reduced", ErrEncoding)
	}
	return Element{re: re, im: im}, nil
}

// EncodeHex is the hexadecimal form of Encode.
func (f *Field) EncodeHex(x Element) string {
	return hex.EncodeToString(f.Encode(x))
}

// DecodeHex parses the output of EncodeHex.
func (f *Field) DecodeHex(s string) (Element, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Element{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return f.Decode(b)
}

func putLittleEndian(dst []byte, v *big.Int) {
	v.FillBytes(dst)
	for i, j := 0, len(dst)-1; i < j; i, j = i+1, j-1 {
		dst[i], dst[j] = dst[j], dst[i]
	}
}

func readLittleEndian(src []byte) *big.Int {
	be := make([]byte, len(src))
	for i := range src {
		be[len(src)-1-i] = src[i]
	}
	return new(big.Int).SetBytes(be)
}
