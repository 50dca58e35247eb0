package services

import "sync"

// keyedMutex serializes work per string key. Locks are striped so the map
// stays bounded regardless of how many keys flow through.
type keyedMutex struct {
	stripes []sync.Mutex
}

func newKeyedMutex(stripeCount int) *keyedMutex {
	if stripeCount <= 0 {
		stripeCount = 64
	}
	return &keyedMutex{stripes: make([]sync.Mutex, stripeCount)}
}

func (m *keyedMutex) lock(key string) func() {
	idx := int(fnv32(key)) % len(m.stripes)
	m.stripes[idx].Lock()
	return m.stripes[idx].Unlock
}

func fnv32(s string) uint32 {
	const prime = 16777619
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
