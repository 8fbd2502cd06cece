package badgerstore

import (
	"encoding/binary"
)

var bin = binary.BigEndian

const (
	hierarchyTag byte = 'h'
	itemTag      byte = 'i'
	boundTag     byte = 'b'
)

// prefix starts every key of the hierarchy. Hierarchy code is length
// prefixed so codes sharing a prefix never share keys.
func prefix(tag byte, hierarchyCode string) []byte {
	key := make([]byte, 0, 3+len(hierarchyCode)+16)
	key = append(key, tag)
	key = bin.AppendUint16(key, uint16(len(hierarchyCode)))
	return append(key, hierarchyCode...)
}

func hierarchyKey(code string) []byte {
	return prefix(hierarchyTag, code)
}

func itemKey(hierarchyCode, code string) []byte {
	return append(prefix(itemTag, hierarchyCode), code...)
}

func levelPrefix(hierarchyCode string, level int) []byte {
	return bin.AppendUint16(prefix(boundTag, hierarchyCode), uint16(level))
}

// boundKey indexes item code by level and left bound. Bounds are never
// negative, so big endian keys keep numeric order.
func boundKey(hierarchyCode string, level int, left int64) []byte {
	return bin.AppendUint64(levelPrefix(hierarchyCode, level), uint64(left))
}

func leftOf(key []byte) int64 {
	return int64(bin.Uint64(key[len(key)-8:]))
}
