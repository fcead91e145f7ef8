package style

import "strconv"

// StringHash is the djb2-xor string hash walked from the last character to
// the first. Class names and keyframe names derived from it are stable
// across processes and machines.
func StringHash(s string) uint32 {
	var hash uint32 = 5381
	units := utf16Units(s)
	for i := len(units) - 1; i >= 0; i-- {
		hash = (hash * 33) ^ uint32(units[i])
	}
	return hash
}

// HashClassName is the default class-name strategy: "_" + base36(hash(key)).
func HashClassName(key string) string {
	return "_" + strconv.FormatUint(uint64(StringHash(key)), 36)
}

// utf16Units expands s into UTF-16 code units so hashes of non-ASCII keys
// match the ones produced by browser-side tooling.
func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}
