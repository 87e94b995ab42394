package dedup

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set"

	"github.com/siskinc/zijiyou/fingerprint"
)

// Set is a concurrency safe set of fingerprints. None is never stored.
type Set struct {
	locker sync.Mutex
	set    mapset.Set
}

func NewSet(fps ...fingerprint.Fingerprint) *Set {
	s := &Set{set: mapset.NewThreadUnsafeSet()}
	s.Add(fps...)
	return s
}

// Add inserts fps and returns how many were new.
func (s *Set) Add(fps ...fingerprint.Fingerprint) int {
	s.locker.Lock()
	defer s.locker.Unlock()
	added := 0
	for _, fp := range fps {
		if fp == fingerprint.None || fp == "" {
			continue
		}
		if s.set.Add(string(fp)) {
			added++
		}
	}
	return added
}

func (s *Set) Contains(fp fingerprint.Fingerprint) bool {
	if fp == fingerprint.None {
		return false
	}
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.set.Contains(string(fp))
}

// CheckAndAdd reports whether fp was already present and inserts it if not,
// in one critical section.
func (s *Set) CheckAndAdd(fp fingerprint.Fingerprint) (seen bool) {
	if fp == fingerprint.None || fp == "" {
		return false
	}
	s.locker.Lock()
	defer s.locker.Unlock()
	return !s.set.Add(string(fp))
}

func (s *Set) Len() int {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.set.Cardinality()
}

// Slice returns the fingerprints sorted.
func (s *Set) Slice() []fingerprint.Fingerprint {
	s.locker.Lock()
	items := s.set.ToSlice()
	s.locker.Unlock()
	fps := make([]fingerprint.Fingerprint, 0, len(items))
	for _, item := range items {
		fps = append(fps, fingerprint.Fingerprint(item.(string)))
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })
	return fps
}
