package vdscript

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gopcut/gopcut/internal/cutrange"
)

const testScript = `declare i;
VirtualDub.Open(U"video.mkv","",0);
VirtualDub.audio.SetSource(1);
VirtualDub.subset.Clear();
VirtualDub.subset.AddRange(446,444);
VirtualDub.subset.AddRange(1397,194);
VirtualDub.video.SetRange();
`

func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []cutrange.Range{
		{Start: 446, Length: 444},
		{Start: 1397, Length: 194},
	}
	if !reflect.DeepEqual(s.Ranges(), want) {
		t.Errorf("Expected ranges %+v, got %+v", want, s.Ranges())
	}
}

func TestParseToleratesSpacedArguments(t *testing.T) {
	s, err := Parse(strings.NewReader("VirtualDub.subset.AddRange(100, 50);\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []cutrange.Range{{Start: 100, Length: 50}}
	if !reflect.DeepEqual(s.Ranges(), want) {
		t.Errorf("Expected ranges %+v, got %+v", want, s.Ranges())
	}
}

func TestParseNoSelections(t *testing.T) {
	s, err := Parse(strings.NewReader("VirtualDub.Open(U\"video.mkv\",\"\",0);\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(s.Ranges()) != 0 {
		t.Errorf("Expected no ranges, got %+v", s.Ranges())
	}
}

func TestRangesReturnsCopy(t *testing.T) {
	s, err := Parse(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	s.Ranges()[0] = cutrange.Range{Start: 999, Length: 1}
	if s.Ranges()[0].Start != 446 {
		t.Error("Expected internal ranges to be unaffected by caller mutation")
	}
}

func TestWriteAdjusted(t *testing.T) {
	s, err := Parse(strings.NewReader(testScript))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var b strings.Builder
	err = s.WriteAdjusted(&b, []cutrange.Range{{Start: 440, Length: 460}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := `declare i;
VirtualDub.Open(U"video.mkv","",0);
VirtualDub.audio.SetSource(1);
VirtualDub.subset.Clear();
VirtualDub.subset.AddRange(440,460);
VirtualDub.video.SetRange();
`
	if b.String() != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, b.String())
	}
}

func TestWriteAdjustedFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "video.mkv.vdscript")
	out := filepath.Join(dir, "video.mkv_adjusted.vdscript")

	if err := os.WriteFile(in, []byte(testScript), 0o644); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	s, err := ParseFile(in)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	adjusted := []cutrange.Range{
		{Start: 400, Length: 500},
		{Start: 1390, Length: 210},
	}
	if err := s.WriteAdjustedFile(out, adjusted); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	reparsed, err := ParseFile(out)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(reparsed.Ranges(), adjusted) {
		t.Errorf("Expected ranges %+v, got %+v", adjusted, reparsed.Ranges())
	}
}
