package filters

import "iter"

// Limit yields at most the first n elements of seq. n <= 0 means no limit
// and returns seq unchanged. The upstream sequence is not pulled past the
// n-th element.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		remaining := n
		for v := range seq {
			if !yield(v) {
				return
			}
			remaining--
			if remaining == 0 {
				return
			}
		}
	}
}
