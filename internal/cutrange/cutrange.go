// Package cutrange defines the frame range value type shared across the cut
// adjustment pipeline.
package cutrange

import "sort"

// Range is a contiguous run of frames selected for keeping, expressed the way
// VirtualDub subsets express it: an inclusive start frame plus a frame count.
// The same value type serves raw user ranges and boundary-adjusted ranges.
type Range struct {
	// Start is the first frame of the range (inclusive, zero-based).
	Start int

	// Length is the number of frames in the range. A valid range has Length >= 1.
	Length int
}

// End returns the last frame of the range (inclusive).
func (r Range) End() int {
	return r.Start + r.Length - 1
}

// Valid reports whether the range has a non-negative start and at least one frame.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.Length >= 1
}

// IsSorted reports whether ranges are in ascending start-frame order.
// Merge requires that order and does not check it; callers that cannot
// guarantee it should call SortByStart first.
func IsSorted(ranges []Range) bool {
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start < ranges[i-1].Start {
			return false
		}
	}
	return true
}

// SortByStart sorts ranges in place in ascending start-frame order.
func SortByStart(ranges []Range) {
	sort.Slice(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
}

// Merge coalesces adjacent, overlapping, or near-adjacent ranges.
//
// PRECONDITION: ranges must be sorted in ascending start-frame order. Merge
// does not sort, and merge correctness depends on the order.
//
// A running open range starts at the first element. Each following range whose
// gap to the open range (current.Start minus one past the open range's end) is
// at most minGap is folded in: the open range's start never moves, and its end
// extends to the farther of the two ends, so contained ranges are absorbed
// without shrinking anything. A larger gap closes the open range and starts a
// new one. Merging an already merged list with the same minGap is a no-op.
func Merge(ranges []Range, minGap int) []Range {
	if len(ranges) == 0 {
		return nil
	}

	merged := make([]Range, 0, len(ranges))
	merged = append(merged, ranges[0])

	for _, cur := range ranges[1:] {
		open := &merged[len(merged)-1]

		gap := cur.Start - (open.Start + open.Length)
		if gap <= minGap {
			endExcl := open.Start + open.Length
			if cur.Start+cur.Length > endExcl {
				endExcl = cur.Start + cur.Length
			}
			open.Length = endExcl - open.Start
		} else {
			merged = append(merged, cur)
		}
	}

	return merged
}
