package adjust

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/gopcut/gopcut/internal/cutrange"
	"github.com/gopcut/gopcut/internal/frameindex"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

// createTestIndex builds an index from a layout string: byte i becomes frame i.
func createTestIndex(layout string) *frameindex.Index {
	var records []frameindex.Record
	for i := 0; i < len(layout); i++ {
		records = append(records, frameindex.Record{
			Frame: i,
			Type:  frameindex.ParsePictureType(layout[i]),
		})
	}
	return frameindex.New(records)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults are valid", Config{IFrameOffset: 1, MinGap: 100, MergeRanges: true}, false},
		{"short cut mode", Config{IFrameOffset: 2, EndMode: ShortCut}, false},
		{"zero offset", Config{IFrameOffset: 0}, true},
		{"negative gap", Config{IFrameOffset: 1, MinGap: -1}, true},
		{"unknown end mode", Config{IFrameOffset: 1, EndMode: EndMode(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestAdjust(t *testing.T) {
	// Frames: 0:I 1:P 2:P 3:I 4:P 5:P
	ix := createTestIndex("IPPIPP")

	tests := []struct {
		name string
		r    cutrange.Range
		cfg  Config
		want cutrange.Range
	}{
		{
			name: "full gop expands to both boundaries",
			r:    cutrange.Range{Start: 1, Length: 4},
			cfg:  Config{IFrameOffset: 1, EndMode: FullGOP},
			want: cutrange.Range{Start: 0, Length: 6},
		},
		{
			name: "short cut keeps a legal end in place",
			r:    cutrange.Range{Start: 2, Length: 1},
			cfg:  Config{IFrameOffset: 1, EndMode: ShortCut},
			want: cutrange.Range{Start: 0, Length: 3},
		},
		{
			name: "start on intra stays with offset 1",
			r:    cutrange.Range{Start: 3, Length: 2},
			cfg:  Config{IFrameOffset: 1, EndMode: FullGOP},
			want: cutrange.Range{Start: 3, Length: 3},
		},
		{
			name: "offset 2 steps back one more intra",
			r:    cutrange.Range{Start: 3, Length: 2},
			cfg:  Config{IFrameOffset: 2, EndMode: FullGOP},
			want: cutrange.Range{Start: 0, Length: 6},
		},
		{
			name: "full gop stops before the next intra",
			r:    cutrange.Range{Start: 0, Length: 2},
			cfg:  Config{IFrameOffset: 1, EndMode: FullGOP},
			want: cutrange.Range{Start: 0, Length: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Adjust(tt.r, tt.cfg, ix)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAdjustContainsOriginal(t *testing.T) {
	ix := createTestIndex("IPPBBPIPPBIPP")

	for _, mode := range []EndMode{FullGOP, ShortCut} {
		for start := 0; start < 10; start++ {
			for length := 1; start+length <= 12; length++ {
				r := cutrange.Range{Start: start, Length: length}
				got, err := Adjust(r, Config{IFrameOffset: 1, EndMode: mode}, ix)
				if err != nil {
					t.Fatalf("%v (%d,%d): expected no error, got %v", mode, start, length, err)
				}
				if got.Start > r.Start || got.End() < r.End() {
					t.Errorf("%v (%d,%d): adjusted %+v does not contain original", mode, start, length, got)
				}
			}
		}
	}
}

func TestAdjustEmptyIndex(t *testing.T) {
	_, err := Adjust(cutrange.Range{Start: 0, Length: 1}, Config{IFrameOffset: 1}, frameindex.New(nil))
	if !errors.Is(err, frameindex.ErrEmptyIndex) {
		t.Errorf("Expected ErrEmptyIndex, got %v", err)
	}
}

func TestAdjustRejectsInvalidRange(t *testing.T) {
	ix := createTestIndex("IPPI")

	tests := []struct {
		name string
		r    cutrange.Range
	}{
		{"zero length", cutrange.Range{Start: 5, Length: 0}},
		{"negative length", cutrange.Range{Start: 5, Length: -3}},
		{"negative start", cutrange.Range{Start: -1, Length: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Adjust(tt.r, Config{IFrameOffset: 1, EndMode: ShortCut}, ix)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestAdjustRejectsInvalidConfig(t *testing.T) {
	ix := createTestIndex("IPP")

	if _, err := Adjust(cutrange.Range{Start: 0, Length: 1}, Config{IFrameOffset: 0}, ix); err == nil {
		t.Error("Expected an error for a zero offset")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{IFrameOffset: 0}, createTestLogger()); err == nil {
		t.Error("Expected an error for a zero offset")
	}
}

func TestAdjustAll(t *testing.T) {
	// Frames: 0:I 1:P 2:P 3:I 4:P 5:P 6:I 7:P 8:P 9:I 10:P 11:P
	ix := createTestIndex("IPPIPPIPPIPP")

	a, err := New(Config{IFrameOffset: 1, EndMode: ShortCut, MergeRanges: true, MinGap: 1}, createTestLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// (1,2) adjusts to (0,3); (4,1) adjusts to (3,2). The two are adjacent,
	// within MinGap, so they merge into (0,5). (10,1) adjusts to (9,2) and
	// stays separate.
	got := a.AdjustAll([]cutrange.Range{
		{Start: 1, Length: 2},
		{Start: 4, Length: 1},
		{Start: 10, Length: 1},
	}, ix)

	want := []cutrange.Range{
		{Start: 0, Length: 5},
		{Start: 9, Length: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestAdjustAllWithoutMerge(t *testing.T) {
	ix := createTestIndex("IPPIPPIPP")

	a, err := New(Config{IFrameOffset: 1, EndMode: ShortCut}, createTestLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := a.AdjustAll([]cutrange.Range{
		{Start: 1, Length: 1},
		{Start: 4, Length: 1},
	}, ix)

	want := []cutrange.Range{
		{Start: 0, Length: 2},
		{Start: 3, Length: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestAdjustAllSkipsFailedRanges(t *testing.T) {
	ix := createTestIndex("IPPIPP")

	a, err := New(Config{IFrameOffset: 1, EndMode: ShortCut}, createTestLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := a.AdjustAll([]cutrange.Range{
		{Start: 9, Length: -9}, // rejected as invalid
		{Start: 4, Length: 1},
	}, ix)

	want := []cutrange.Range{{Start: 3, Length: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
