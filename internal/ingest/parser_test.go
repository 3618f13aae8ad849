// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"testing"

	"github.com/shibata-lab/labpipe/pkg/types"
)

func TestRegexParserEnglishJournal(t *testing.T) {
	raw := `Alice Smith, Kenji Ota, "Neural Coding in Rats", Neural Networks, 12(3), pp. 100-112, 2021. doi:10.1234/abc.def`

	p, err := RegexParser{}.Parse(context.Background(), raw, types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}

	if !p.Valid() {
		t.Fatalf("record flagged invalid: %v", p.Errors)
	}
	if p.Title != "Neural Coding in Rats" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Alice Smith" || p.Authors[1] != "Kenji Ota" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Journal != "Neural Networks" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.Volume != "12" || p.Issue != "3" {
		t.Errorf("Volume/Issue = %q/%q", p.Volume, p.Issue)
	}
	if p.Pages != "100-112" {
		t.Errorf("Pages = %q", p.Pages)
	}
	if p.Year != 2021 {
		t.Errorf("Year = %d", p.Year)
	}
	if p.DOI != "10.1234/abc.def" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.Lang != "en" {
		t.Errorf("Lang = %q", p.Lang)
	}
	if p.Type != types.TypeJournal {
		t.Errorf("Type = %s", p.Type)
	}
}

func TestRegexParserJapaneseCitation(t *testing.T) {
	raw := `山田太郎、田中健「対話ロボットの設計」日本ロボット学会誌, vol. 39, no. 2, pp. 150-160, 2021`

	p, err := RegexParser{}.Parse(context.Background(), raw, types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}

	if p.Title != "対話ロボットの設計" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "山田太郎" || p.Authors[1] != "田中健" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if p.Journal != "日本ロボット学会誌" {
		t.Errorf("Journal = %q", p.Journal)
	}
	if p.Volume != "39" || p.Issue != "2" {
		t.Errorf("Volume/Issue = %q/%q", p.Volume, p.Issue)
	}
	if p.Lang != "ja" {
		t.Errorf("Lang = %q, want ja", p.Lang)
	}
}

func TestRegexParserConferenceDetection(t *testing.T) {
	raw := `Alice Smith, "Swarm Learning", Proc. of the IEEE International Conference on Robotics and Automation, pp. 1-8, 2022`

	p, err := RegexParser{}.Parse(context.Background(), raw, types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}

	if p.Conference == "" {
		t.Fatalf("venue not detected as conference: journal=%q conference=%q", p.Journal, p.Conference)
	}
	if p.Type != types.TypeConference {
		t.Errorf("Type = %s, want conference (promoted from journal fallback)", p.Type)
	}
}

func TestRegexParserMissingFieldsStillEmitted(t *testing.T) {
	p, err := RegexParser{}.Parse(context.Background(), "unparseable text with no structure", types.TypePoster)
	if err != nil {
		t.Fatal(err)
	}

	if p.Valid() {
		t.Error("record should be flagged invalid")
	}
	if len(p.Errors) != 2 {
		t.Errorf("Errors = %v, want missing title and missing authors", p.Errors)
	}
	if p.Type != types.TypePoster {
		t.Errorf("Type = %s, want the section fallback", p.Type)
	}
}

func TestRegexParserBareDOI(t *testing.T) {
	raw := `Alice Smith, "A Study", Journal of Tests, 5(1), pp. 2-9, 2020, 10.5555/xyz123`

	p, err := RegexParser{}.Parse(context.Background(), raw, types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}
	if p.DOI != "10.5555/xyz123" {
		t.Errorf("DOI = %q, want bare DOI extracted", p.DOI)
	}
}

func TestRegexParserURLNotConfusedWithDOI(t *testing.T) {
	raw := `Alice Smith, "A Study", Journal of Tests, 5(1), pp. 2-9, 2020. https://example.org/paper.pdf`

	p, err := RegexParser{}.Parse(context.Background(), raw, types.TypeJournal)
	if err != nil {
		t.Fatal(err)
	}
	if p.URL != "https://example.org/paper.pdf" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.DOI != "" {
		t.Errorf("DOI = %q, want empty", p.DOI)
	}
}

func TestDetectLang(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"Neural Coding in Rats", "en"},
		{"対話ロボットの設計", "ja"},
		{"Mixed テキスト title", "ja"},
		{"", "en"},
	}
	for _, tt := range tests {
		if got := detectLang(tt.s); got != tt.want {
			t.Errorf("detectLang(%q) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestSplitSegmentsProtectsInitials(t *testing.T) {
	segs := splitSegments("A. Smith and B. Jones. The Title. The Venue")
	if len(segs) != 3 {
		t.Fatalf("segments = %v, want 3", segs)
	}
	if segs[0] != "A. Smith and B. Jones" {
		t.Errorf("segs[0] = %q, initials must not split", segs[0])
	}
}
