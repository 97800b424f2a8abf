package set

import (
	"fmt"
	"sort"
)

// Set is a plain generic set over a map. Not safe for concurrent use.
type Set[T comparable] struct {
	impl map[T]struct{}
}

func New[T comparable](values ...T) *Set[T] {
	result := &Set[T]{
		impl: make(map[T]struct{}, len(values)),
	}
	result.Add(values...)
	return result
}

func (s *Set[T]) Add(values ...T) {
	for _, value := range values {
		s.impl[value] = struct{}{}
	}
}

func (s *Set[T]) Remove(values ...T) {
	for _, value := range values {
		delete(s.impl, value)
	}
}

func (s *Set[T]) Len() int {
	return len(s.impl)
}

func (s *Set[T]) Empty() bool {
	return s.Len() == 0
}

func (s *Set[T]) Contains(value T) bool {
	_, ok := s.impl[value]
	return ok
}

func (s *Set[T]) Range(callback func(value T)) {
	for value := range s.impl {
		callback(value)
	}
}

func (s *Set[T]) String() string {
	return fmt.Sprint(s.Slice())
}

func (s *Set[T]) Slice() []T {
	result := make([]T, 0, len(s.impl))
	for value := range s.impl {
		result = append(result, value)
	}
	return result
}

func (s *Set[T]) SortedSliceFunc(less func(a, b T) bool) []T {
	result := s.Slice()
	sort.Slice(result, func(i, j int) bool {
		return less(result[i], result[j])
	})
	return result
}
