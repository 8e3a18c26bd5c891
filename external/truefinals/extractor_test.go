package truefinals

import (
	"strings"
	"testing"
)

const bracketFixture = `
<html><body>
  <div class="bracket">
    <button id="game-r1-m1">
      <div class="header">
        <div class="skew-x">Cage 2</div>
        <div class="absolute bottom-[3px]">2:45 PM</div>
      </div>
      <div id="slot-a"><span>Ripper</span><span class="score">W</span></div>
      <div id="slot-b"><span>Crusher</span><span class="score">0</span></div>
    </button>
    <button id="game-r1-m2">
      <div class="header">
        <div class="skew-x">Cage 4</div>
        <div class="absolute bottom-[3px]">3:15 PM</div>
      </div>
      <div id="slot-a"><span>Hammer Time</span><span class="score">0</span></div>
      <div id="slot-b"><span>Spin Cycle</span><span class="score">0</span></div>
    </button>
    <button id="game-r1-m3">
      <div id="slot-a"><span>TBD</span></div>
    </button>
    <button id="notagame">
      <div id="slot-a"><span>Ignored</span><span>0</span></div>
      <div id="slot-b"><span>Also Ignored</span><span>0</span></div>
    </button>
  </div>
</body></html>`

func TestBracketExtractor_Extract(t *testing.T) {
	t.Parallel()

	matches, err := NewBracketExtractor("NHRL March 2026").Extract(strings.NewReader(bracketFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 complete games, got %d", len(matches))
	}

	first := matches[0]
	if first.Source != SourceName {
		t.Fatalf("unexpected source %q", first.Source)
	}
	if first.EntrantA != "Ripper" || first.EntrantB != "Crusher" {
		t.Fatalf("unexpected entrants %q vs %q", first.EntrantA, first.EntrantB)
	}
	if first.WinMarkerA != "W" || first.WinMarkerB != "0" {
		t.Fatalf("unexpected markers %q / %q", first.WinMarkerA, first.WinMarkerB)
	}
	if first.CageLabel != "Cage 2" || first.TimeText != "2:45 PM" {
		t.Fatalf("unexpected schedule fields %q / %q", first.CageLabel, first.TimeText)
	}
	if first.Competition != "NHRL March 2026" {
		t.Fatalf("unexpected competition %q", first.Competition)
	}

	second := matches[1]
	if second.EntrantA != "Hammer Time" || second.EntrantB != "Spin Cycle" {
		t.Fatalf("unexpected entrants %q vs %q", second.EntrantA, second.EntrantB)
	}
	if second.WinMarkerA != "0" || second.WinMarkerB != "0" {
		t.Fatalf("expected undecided markers, got %q / %q", second.WinMarkerA, second.WinMarkerB)
	}
}

func TestBracketExtractor_EmptyPage(t *testing.T) {
	t.Parallel()

	matches, err := NewBracketExtractor("").Extract(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}
