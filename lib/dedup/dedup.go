package dedup

import (
	"leadharvest/lib/textutil"

	"github.com/antzucaro/matchr"
)

// Key is the normalized identity tuple used to suppress repeat records.
type Key struct {
	Name    string
	Address string
}

func KeyOf(name, address string) Key {
	return Key{
		Name:    textutil.Normalize(name),
		Address: textutil.Normalize(address),
	}
}

// Empty reports whether the key carries no identity signal at all.
func (k Key) Empty() bool {
	return k.Name == "" && k.Address == ""
}

type Options struct {
	// NearThreshold, when > 0, also suppresses records whose address
	// matches a remembered key exactly while the name's Jaro-Winkler
	// similarity exceeds the threshold. Catches punctuation-only
	// variants ("Joes Pizza" vs "Joe's Pizza") that survive
	// normalization.
	NearThreshold float64
}

type Set struct {
	keys          map[Key]struct{}
	namesByAddr   map[string][]string
	nearThreshold float64
}

func NewSet(opts Options) *Set {
	return &Set{
		keys:          map[Key]struct{}{},
		namesByAddr:   map[string][]string{},
		nearThreshold: opts.NearThreshold,
	}
}

// Seen reports whether the key identifies an already-remembered record.
// An all-empty key is never considered seen: a record with no identity
// signal is always kept.
func (s *Set) Seen(k Key) bool {
	if k.Empty() {
		return false
	}
	if _, ok := s.keys[k]; ok {
		return true
	}

	if s.nearThreshold > 0 {
		for _, name := range s.namesByAddr[k.Address] {
			if matchr.JaroWinkler(k.Name, name, false) >= s.nearThreshold {
				return true
			}
		}
	}
	return false
}

func (s *Set) Remember(k Key) {
	if k.Empty() {
		return
	}
	if _, ok := s.keys[k]; ok {
		return
	}
	s.keys[k] = struct{}{}
	s.namesByAddr[k.Address] = append(s.namesByAddr[k.Address], k.Name)
}

func (s *Set) Len() int {
	return len(s.keys)
}
