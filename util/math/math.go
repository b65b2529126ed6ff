package math

// IsPowerOfTwo reports whether given integer is a power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// CeilToPowerOfTwo returns the least power of two integer value greater than
// or equal to n.
func CeilToPowerOfTwo(n uint64) uint64 {
	if n <= 2 {
		return n
	}
	return fillBits(n-1) + 1
}

// PowersOfTwo returns every power of two in [lo, hi], ascending. It is the
// doubling ladder used for worker counts: PowersOfTwo(1, 16) = 1 2 4 8 16.
func PowersOfTwo(lo, hi uint64) []uint64 {
	if lo == 0 {
		lo = 1
	}
	if hi < lo {
		return nil
	}

	out := make([]uint64, 0, 8)
	for n := CeilToPowerOfTwo(lo); n != 0 && n <= hi; n <<= 1 {
		out = append(out, n)
	}
	return out
}

func fillBits(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n
}
