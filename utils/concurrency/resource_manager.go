// Package concurrency implements a channel based pool of resources shared by concurrent tasks.
package concurrency

import (
	"sync"
)

// ResourceManager lends a fixed set of resources (e.g. pipeline instances) to
// tasks run concurrently. At most one task holds a given resource at a time,
// so the number of resources bounds the number of tasks running at once.
type ResourceManager[T any] struct {
	wg        sync.WaitGroup
	resources chan T

	mu  sync.Mutex
	err error
}

// NewResourceManager instantiates a new [ResourceManager] lending the given resources.
func NewResourceManager[T any](resources []T) *ResourceManager[T] {
	ch := make(chan T, len(resources))
	for i := range resources {
		ch <- resources[i]
	}
	return &ResourceManager[T]{resources: ch}
}

// Task is a function using a resource.
type Task[T any] func(resource T) (err error)

// Size returns the number of resources.
func (r *ResourceManager[T]) Size() int {
	return cap(r.resources)
}

// Run runs f in a new goroutine as soon as a resource is available.
// Once a task has returned an error, tasks that did not start yet are skipped.
func (r *ResourceManager[T]) Run(f Task[T]) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		resource := <-r.resources
		defer func() { r.resources <- resource }()

		if r.failed() {
			return
		}

		if err := f(resource); err != nil {
			r.mu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.mu.Unlock()
		}
	}()
}

func (r *ResourceManager[T]) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err != nil
}

// Wait waits until all the tasks have returned and returns the first error
// encountered, if any. The manager can be reused afterwards.
func (r *ResourceManager[T]) Wait() (err error) {
	r.wg.Wait()
	r.mu.Lock()
	err, r.err = r.err, nil
	r.mu.Unlock()
	return
}
