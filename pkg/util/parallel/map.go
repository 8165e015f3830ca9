package parallel

import (
	"golang.org/x/sync/errgroup"
)

// Map evaluates fn for every index in [0, n) on at most workers goroutines
// and returns the results in index order, whatever order they completed in.
// A worker stops at its first failing index; the first error is returned.
func Map[T any](n int, workers int, fn func(i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > n {
		workers = n
	}

	// Indices are handed out in contiguous chunks to keep scheduling cheap
	// for per-node work.
	chunk := (n + workers - 1) / workers

	var eg errgroup.Group
	for start := 0; start < n; start += chunk {
		start, end := start, start+chunk
		if end > n {
			end = n
		}
		eg.Go(func() error {
			for i := start; i < end; i++ {
				v, err := fn(i)
				if err != nil {
					return err
				}
				out[i] = v
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Concat is Map for functions producing a slice per index: the slices are
// concatenated in index order.
func Concat[T any](n int, workers int, fn func(i int) ([]T, error)) ([]T, error) {
	parts, err := Map(n, workers, fn)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]T, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
