package shaderres

// Binary is a precompiled, driver-specific shader blob used instead of
// source text. A Binary owns its bytes: Assign and NewBinaryFromBytes copy,
// so the caller's buffer may be reused as soon as they return.
//
// A Binary set on a Shader belongs to that shader and must not be modified
// afterwards; use Clone to derive a new one.
type Binary struct {
	data []byte
}

// NewBinary returns a zero-filled binary of size bytes.
func NewBinary(size int) *Binary {
	b := &Binary{}
	b.Allocate(size)
	return b
}

// NewBinaryFromBytes returns a binary holding a copy of data.
func NewBinaryFromBytes(data []byte) *Binary {
	b := &Binary{}
	b.Assign(data)
	return b
}

// Allocate resets the buffer to size zero bytes.
func (b *Binary) Allocate(size int) {
	if size < 0 {
		size = 0
	}
	b.data = make([]byte, size)
}

// Assign replaces the content with a copy of data.
func (b *Binary) Assign(data []byte) {
	b.data = append(make([]byte, 0, len(data)), data...)
}

// Bytes returns the underlying buffer. Writes through the returned slice
// modify the binary.
func (b *Binary) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the size in bytes.
func (b *Binary) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Clone returns a deep copy.
func (b *Binary) Clone() *Binary {
	if b == nil {
		return nil
	}
	return NewBinaryFromBytes(b.data)
}

// Words returns the content as little-endian 32-bit words, the layout
// SPIR-V consumers expect. Trailing bytes that do not fill a word are
// dropped.
func (b *Binary) Words() []uint32 {
	data := b.Bytes()
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = uint32(data[i*4]) |
			uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 |
			uint32(data[i*4+3])<<24
	}
	return words
}
