package utils

import "sync"

var mu sync.Mutex

// ExecuteWithMutex serializes a critical section. The batch runner uses it to
// append session results coming out of the worker pool.
func ExecuteWithMutex(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	fn()
}
