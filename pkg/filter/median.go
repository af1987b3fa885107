// Package filter smooths value sequences with a sliding-window median.
package filter

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Boundary selects how the window behaves at the ends of a sequence.
type Boundary int

const (
	// Repeat pads both ends with window/2 copies of the first and last
	// element. Output length equals input length.
	Repeat Boundary = iota
	// WindowShrink grows the window from one element up to its full size at
	// the start and shrinks it back at the end. Output length equals input
	// length.
	WindowShrink
	// Drop slides only a full window: output length is input length minus
	// window plus one.
	Drop
	// Wraparound is not supported.
	Wraparound
)

var (
	// ErrWindowSize is returned for an even window or one smaller than 3.
	ErrWindowSize = errors.New("window size must be odd and at least 3")

	// ErrUnsupportedBoundary is returned for Wraparound and unknown policies.
	ErrUnsupportedBoundary = errors.New("unsupported boundary policy")
)

var boundaryNames = map[Boundary]string{
	Repeat:       "repeat",
	WindowShrink: "shrink",
	Drop:         "drop",
	Wraparound:   "wraparound",
}

func (b Boundary) String() string {
	if name, ok := boundaryNames[b]; ok {
		return name
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// ParseBoundary returns the policy with the given name.
func ParseBoundary(name string) (Boundary, error) {
	for b, n := range boundaryNames {
		if strings.EqualFold(n, name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedBoundary, name)
}

// MedianFiltering returns the median-filtered sequence of seq. The arguments
// are checked eagerly; the output is produced lazily as seq is consumed.
//
// median receives a fresh slice it may reorder.
func MedianFiltering[T any](seq iter.Seq[T], boundary Boundary, median func([]T) T, window int) (iter.Seq[T], error) {
	if window < 3 || window%2 == 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, window)
	}
	if median == nil {
		return nil, errors.New("median function is nil")
	}
	switch boundary {
	case Repeat:
		return slide(seq, median, window, window/2), nil
	case Drop:
		return slide(seq, median, window, 0), nil
	case WindowShrink:
		return shrink(seq, median, window), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedBoundary, boundary)
	}
}

// MedianFilter is MedianFiltering over a slice.
func MedianFilter[T any](values []T, boundary Boundary, median func([]T) T, window int) ([]T, error) {
	out, err := MedianFiltering(slices.Values(values), boundary, median, window)
	if err != nil {
		return nil, err
	}
	return slices.Collect(out), nil
}

// slide runs a fixed-size FIFO window over seq, padding each end with pad
// copies of the first and last element.
func slide[T any](seq iter.Seq[T], median func([]T) T, window, pad int) iter.Seq[T] {
	return func(yield func(T) bool) {
		fifo := make([]T, 0, window+1)
		push := func(v T) bool {
			fifo = append(fifo, v)
			if len(fifo) > window {
				fifo = fifo[1:]
			}
			if len(fifo) < window {
				return true
			}
			return yield(median(slices.Clone(fifo)))
		}

		var (
			last  T
			empty = true
		)
		for v := range seq {
			if empty {
				empty = false
				for range pad {
					if !push(v) {
						return
					}
				}
			}
			last = v
			if !push(v) {
				return
			}
		}
		if empty {
			return
		}
		for range pad {
			if !push(last) {
				return
			}
		}
	}
}

// shrink centres a window on every element, as wide as the configured size
// allows without running past either end. Edge windows are therefore always
// odd: with window 5 the second element gets a 3-wide window, never a 4-wide
// one, and the first and last elements pass through unchanged.
func shrink[T any](seq iter.Seq[T], median func([]T) T, window int) iter.Seq[T] {
	half := window / 2
	return func(yield func(T) bool) {
		var (
			buf   []T // elements base, base+1, ...
			base  int
			next  int // next output index
			count int
		)
		emit := func(i, h int) bool {
			w := buf[i-h-base : i+h+1-base]
			if len(w) < 3 {
				return yield(buf[i-base])
			}
			return yield(median(slices.Clone(w)))
		}

		for v := range seq {
			buf = append(buf, v)
			count++
			for {
				h := min(next, half)
				if next+h > count-1 {
					break
				}
				if !emit(next, h) {
					return
				}
				next++
				if drop := next - half - base; drop > 0 {
					buf = buf[drop:]
					base += drop
				}
			}
		}
		for ; next < count; next++ {
			if !emit(next, min(next, half, count-1-next)) {
				return
			}
		}
	}
}
