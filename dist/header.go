package dist

import (
	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

// DecodeHeader consumes the distribution header at the start of packet,
// if there is one, and stores the new atoms it declares in cache.
//
// It returns the atom cache keys of the header in their declared order.
// ATOM_CACHE_REF terms of the same message index this list. A packet that
// does not start with the header tag is returned unchanged. A header needs
// a cache, ErrNoAtomCache is returned if it is nil.
//
// Entries are stored as they are read. If the header turns out to be
// malformed, the entries before the faulty one stay in cache.
func DecodeHeader(packet []byte, cache *etf.AtomCache) ([]etf.AtomCacheKey, []byte, error) {
	// all the details are here https://erlang.org/doc/apps/erts/erl_ext_dist.html#normal-distribution-header
	tag, rest, err := etf.ReadUint8[byte](packet)
	if err != nil {
		return nil, nil, err
	}
	if tag != protoDist {
		return nil, packet, nil
	}
	if cache == nil {
		return nil, nil, ErrNoAtomCache
	}

	// number of atom references are present in package
	references, rest, err := etf.ReadUint8[int](rest)
	if err != nil {
		return nil, nil, err
	}
	if references == 0 {
		return nil, rest, nil
	}

	flags, rest, err := etf.Take(rest, references/2+1)
	if err != nil {
		return nil, nil, err
	}

	// bit 0 of the nibble following the last reference is the LongAtoms
	// flag. If it is set, 2 bytes are used for atom lengths instead of 1.
	longAtoms := nibble(flags, references)&0x01 == 0x01

	keys := make([]etf.AtomCacheKey, references)
	for i := 0; i < references; i++ {
		flag := nibble(flags, i)
		isNewReference := flag&0x08 == 0x08

		var slot uint8
		slot, rest, err = etf.ReadUint8[uint8](rest)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = etf.AtomCacheKey{
			Segment: etf.Segment(flag & 0x07),
			Slot:    slot,
		}

		if !isNewReference {
			continue
		}

		var atomLen int
		if longAtoms {
			atomLen, rest, err = etf.ReadUint16[int](rest)
		} else {
			atomLen, rest, err = etf.ReadUint8[int](rest)
		}
		if err != nil {
			return nil, nil, err
		}

		var b []byte
		b, rest, err = etf.Take(rest, atomLen)
		if err != nil {
			return nil, nil, err
		}
		atom, err := etf.AtomFromUTF8(b)
		if err != nil {
			return nil, nil, err
		}
		cache.Insert(keys[i], atom)
	}

	return keys, rest, nil
}

// nibble returns the half byte i of flags, high half first.
func nibble(flags []byte, i int) byte {
	b := flags[i>>1]
	if i&0x01 == 0 {
		return b >> 4
	}
	return b & 0x0f
}
