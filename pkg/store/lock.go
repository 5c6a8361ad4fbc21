// SPDX-License-Identifier: MPL-2.0

package store

import "sync"

// locks maps a lock key to its mutex. Entries are never removed; there is
// one per working copy used by the process.
var locks sync.Map

// tryLock acquires the transaction lock for key without blocking.
func tryLock(key string) (unlock func(), ok bool) {
	v, _ := locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
