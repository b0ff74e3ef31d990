package search

import "encoding/binary"

const (
	lo7  = 0x7f7f7f7f7f7f7f7f
	ones = 0x0101010101010101
	// gathers the low bit of every byte into the top byte, byte i -> bit 56+i
	gather = 0x0102040810204080
)

// broadcast repeats b in all eight bytes of a word.
func broadcast(b byte) uint64 {
	return uint64(b) * ones
}

// load reads eight bytes little endian, so byte i of p lands in bits 8i..8i+7.
func load(p []byte) uint64 {
	return binary.LittleEndian.Uint64(p)
}

// zeroBytes sets the high bit of every byte of x that is zero and clears
// everything else. There are no carries between bytes, so the result is exact.
func zeroBytes(x uint64) uint64 {
	return ^(((x & lo7) + lo7) | x | lo7)
}

// equalBytes marks the bytes where a and b agree (0x80 for equal, 0x00 otherwise).
func equalBytes(a, b uint64) uint64 {
	return zeroBytes(a ^ b)
}

// movemask compresses a 0x80-per-byte word into eight bits, byte i -> bit i.
func movemask(x uint64) uint32 {
	return uint32((((x >> 7) & ones) * gather) >> 56)
}
