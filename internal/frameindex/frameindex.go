// Package frameindex provides the immutable frame classification lookup that
// boundary search runs against.
package frameindex

import (
	"errors"
	"sort"
)

// ErrEmptyIndex is returned when boundary search is attempted against an index
// with no entries. There is no frame to anchor a cut to.
var ErrEmptyIndex = errors.New("frame index has no entries")

// PictureType classifies a frame by how it is compressed.
type PictureType byte

const (
	// Unknown marks frames the log did not classify. Searches treat unknown
	// frames as "not that type", never as an error.
	Unknown PictureType = iota

	// Intra frames decode without reference to any other frame. The only legal
	// cut-in boundary.
	Intra

	// Predicted frames reference prior frames only. A legal cut-out boundary.
	Predicted

	// Bidirectional frames reference frames on both sides and are never a
	// self-contained boundary.
	Bidirectional
)

// ParsePictureType maps the single-character classification used by ffmpeg
// showinfo logs (I, P, B). Any other character yields Unknown.
func ParsePictureType(c byte) PictureType {
	switch c {
	case 'I':
		return Intra
	case 'P':
		return Predicted
	case 'B':
		return Bidirectional
	default:
		return Unknown
	}
}

// String returns the log character for the picture type.
func (t PictureType) String() string {
	switch t {
	case Intra:
		return "I"
	case Predicted:
		return "P"
	case Bidirectional:
		return "B"
	default:
		return "?"
	}
}

// Record is the classification of a single frame as read from a frame log.
type Record struct {
	// Frame is the zero-based frame number.
	Frame int

	// Type is the reported picture type.
	Type PictureType

	// PTS is the presentation time in seconds. Only meaningful when HasPTS is
	// set; type-only logs carry no timestamps.
	PTS float64

	// HasPTS reports whether PTS holds a value from the log.
	HasPTS bool
}

// Index is an immutable mapping from frame number to Record. Frame numbers
// need not be contiguous; gaps are legal wherever the source log is
// incomplete. Once built, an Index is never mutated and is safe to share
// across goroutines.
type Index struct {
	records map[int]Record
	frames  []int
}

// New builds an index from records. A later record overrides an earlier one
// with the same frame number (last occurrence wins, matching the logs this
// tool consumes). An empty record set yields a valid zero-entry index, which
// boundary search rejects with ErrEmptyIndex.
func New(records []Record) *Index {
	m := make(map[int]Record, len(records))
	for _, rec := range records {
		m[rec.Frame] = rec
	}

	frames := make([]int, 0, len(m))
	for f := range m {
		frames = append(frames, f)
	}
	sort.Ints(frames)

	return &Index{records: m, frames: frames}
}

// Len returns the number of known frames.
func (ix *Index) Len() int {
	return len(ix.frames)
}

// Get returns the record for a frame number.
func (ix *Index) Get(frame int) (Record, bool) {
	rec, ok := ix.records[frame]
	return rec, ok
}

// TypeOf returns the picture type of a frame, or Unknown for frames the log
// does not cover.
func (ix *Index) TypeOf(frame int) PictureType {
	return ix.records[frame].Type
}

// PTSOf returns the presentation time of a frame in seconds. ok is false when
// the frame is unknown or the log carried no timestamp for it.
func (ix *Index) PTSOf(frame int) (float64, bool) {
	rec, ok := ix.records[frame]
	if !ok || !rec.HasPTS {
		return 0, false
	}
	return rec.PTS, true
}

// Frames returns the known frame numbers in ascending order. The returned
// slice is a copy.
func (ix *Index) Frames() []int {
	frames := make([]int, len(ix.frames))
	copy(frames, ix.frames)
	return frames
}

// MaxFrame returns the highest known frame number. Only meaningful on a
// non-empty index; an empty index reports 0.
func (ix *Index) MaxFrame() int {
	if len(ix.frames) == 0 {
		return 0
	}
	return ix.frames[len(ix.frames)-1]
}
