package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/domain/fight"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
)

// BracketWinSentinel is the marker the bracket page renders next to the
// winning slot.
const BracketWinSentinel = "W"

// RawMatch is the adapter-native representation of one upstream bout. It is
// an explicit struct so the reconciliation engine never sees loosely-typed
// maps: adapters fill the fields their source provides and leave the rest
// zero.
//
// The results API reports per-side binary win flags plus a played marker;
// the bracket page reports per-side win-marker strings. Exactly one of the
// two shapes is populated per entry.
type RawMatch struct {
	Source          string
	EntrantA        string
	EntrantB        string
	WinFlagA        *bool
	WinFlagB        *bool
	Played          *bool
	WinMarkerA      string
	WinMarkerB      string
	OutcomeNote     string
	CageLabel       string
	TimeText        string
	Epoch           int64
	DurationSeconds *int
	Competition     string
}

// Normalizer maps RawMatch entries into canonical fight records. It owns
// every format-specific rule: outcome derivation, wall-clock and cage label
// normalization, and the ambiguous-source path.
type Normalizer struct {
	location *time.Location
	logger   *logging.Logger
}

func NewNormalizer(location *time.Location, logger *logging.Logger) *Normalizer {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{location: location, logger: logger}
}

// Normalize converts one raw entry into a fight record from the tracked
// robot's point of view. The bool is false when the entry is not ours or
// cannot identify a fight; those entries are logged and skipped, never
// fatal.
func (n *Normalizer) Normalize(ctx context.Context, raw RawMatch, ownedNames map[string]struct{}) (fight.Record, bool) {
	entrantA := strings.TrimSpace(raw.EntrantA)
	entrantB := strings.TrimSpace(raw.EntrantB)
	if entrantA == "" || entrantB == "" {
		n.logger.WarnContext(ctx, "dropping raw match without both entrants",
			"source", raw.Source, "entrant_a", entrantA, "entrant_b", entrantB)
		return fight.Record{}, false
	}

	_, ownsA := ownedNames[entrantA]
	_, ownsB := ownedNames[entrantB]
	switch {
	case ownsA && ownsB:
		// Two tracked robots in one bout should not happen; keep the
		// first side deterministically.
		n.logger.WarnContext(ctx, "both entrants are tracked robots, keeping first",
			"source", raw.Source, "entrant_a", entrantA, "entrant_b", entrantB)
		ownsB = false
	case !ownsA && !ownsB:
		return fight.Record{}, false
	}

	owner, opponent := entrantA, entrantB
	ours := sideA
	if ownsB {
		owner, opponent = entrantB, entrantA
		ours = sideB
	}

	outcome := n.deriveOutcome(ctx, raw, ours, owner, opponent)

	rec := fight.Record{
		OwnerRobotName:  owner,
		OpponentName:    opponent,
		Competition:     fight.NormalizeCompetition(raw.Competition),
		Cage:            ParseCageNumber(raw.CageLabel),
		FightTime:       n.normalizeTime(ctx, raw),
		DurationSeconds: raw.DurationSeconds,
		Outcome:         outcome,
	}
	if rec.Decided() {
		rec.OutcomeType = MapOutcomeNote(raw.OutcomeNote)
	}
	return rec, true
}

type side int

const (
	sideA side = iota
	sideB
)

func (n *Normalizer) deriveOutcome(ctx context.Context, raw RawMatch, ours side, owner, opponent string) fight.Outcome {
	if raw.WinFlagA != nil || raw.WinFlagB != nil {
		return n.deriveResultsOutcome(ctx, raw, ours, owner, opponent)
	}
	return n.deriveBracketOutcome(ctx, raw, ours, owner, opponent)
}

// deriveResultsOutcome handles the results-API shape: per-side binary win
// flags and a played marker.
func (n *Normalizer) deriveResultsOutcome(ctx context.Context, raw RawMatch, ours side, owner, opponent string) fight.Outcome {
	flagA := raw.WinFlagA != nil && *raw.WinFlagA
	flagB := raw.WinFlagB != nil && *raw.WinFlagB

	switch {
	case flagA != flagB:
		winnerIsA := flagA
		if (ours == sideA) == winnerIsA {
			return fight.OutcomeWin
		}
		return fight.OutcomeLose
	case !flagA && !flagB:
		if raw.Played != nil && !*raw.Played {
			return fight.OutcomeUndecided
		}
		// Played with no winner marked: the source is ambiguous. Do not
		// guess; leave undecided for manual review.
		n.logger.WarnContext(ctx, "ambiguous outcome left undecided",
			"source", raw.Source, "owner", owner, "opponent", opponent,
			"reason", "no winner flagged for a played fight")
		return fight.OutcomeUndecided
	default:
		n.logger.WarnContext(ctx, "ambiguous outcome left undecided",
			"source", raw.Source, "owner", owner, "opponent", opponent,
			"reason", "both sides flagged as winners")
		return fight.OutcomeUndecided
	}
}

// deriveBracketOutcome handles the bracket-page shape: per-side win-marker
// strings where "0" on both sides means not yet decided.
func (n *Normalizer) deriveBracketOutcome(ctx context.Context, raw RawMatch, ours side, owner, opponent string) fight.Outcome {
	markerA := strings.TrimSpace(raw.WinMarkerA)
	markerB := strings.TrimSpace(raw.WinMarkerB)
	if markerA == "0" && markerB == "0" {
		return fight.OutcomeUndecided
	}

	wonA := strings.EqualFold(markerA, BracketWinSentinel)
	wonB := strings.EqualFold(markerB, BracketWinSentinel)
	switch {
	case wonA && wonB:
		n.logger.WarnContext(ctx, "ambiguous outcome left undecided",
			"source", raw.Source, "owner", owner, "opponent", opponent,
			"reason", "both sides carry the win marker")
		return fight.OutcomeUndecided
	case wonA:
		if ours == sideA {
			return fight.OutcomeWin
		}
		return fight.OutcomeLose
	case wonB:
		if ours == sideB {
			return fight.OutcomeWin
		}
		return fight.OutcomeLose
	default:
		n.logger.WarnContext(ctx, "ambiguous outcome left undecided",
			"source", raw.Source, "owner", owner, "opponent", opponent,
			"marker_a", markerA, "marker_b", markerB,
			"reason", "no side carries the win marker")
		return fight.OutcomeUndecided
	}
}

func (n *Normalizer) normalizeTime(ctx context.Context, raw RawMatch) string {
	if raw.Epoch > 0 {
		return ClockFromEpoch(raw.Epoch, n.location)
	}
	if strings.TrimSpace(raw.TimeText) == "" {
		return ""
	}
	normalized, ok := NormalizeClockText(raw.TimeText)
	if !ok {
		n.logger.WarnContext(ctx, "unparsable fight time dropped",
			"source", raw.Source, "time_text", raw.TimeText)
		return ""
	}
	return normalized
}

// NormalizeClockText converts upstream wall-clock text to 24-hour
// "HH:MM[:SS]". Accepts 12-hour "H:MM AM/PM" and already-24h "HH:MM[:SS]".
func NormalizeClockText(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	upper := strings.ToUpper(text)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			text = strings.TrimSpace(text[:len(text)-len(suffix)])
			break
		}
	}

	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	hour, err := parseClockPart(parts[0], 23)
	if err != nil {
		return "", false
	}
	minute, err := parseClockPart(parts[1], 59)
	if err != nil {
		return "", false
	}
	second := -1
	if len(parts) == 3 {
		second, err = parseClockPart(parts[2], 59)
		if err != nil {
			return "", false
		}
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return "", false
		}
		// 12 AM is midnight; PM adds twelve except for 12 PM itself.
		if meridiem == "AM" && hour == 12 {
			hour = 0
		} else if meridiem == "PM" && hour != 12 {
			hour += 12
		}
	}

	if second >= 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hour, minute, second), true
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// ClockFromEpoch renders epoch seconds as local wall-clock "HH:MM:SS".
func ClockFromEpoch(epoch int64, loc *time.Location) string {
	if epoch <= 0 {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epoch, 0).In(loc).Format("15:04:05")
}

// ParseCageNumber extracts the numeric part of a cage label: "Cage 4" and
// "C4" both yield 4. Unparsable labels yield nil.
func ParseCageNumber(label string) *int {
	value := 0
	seen := false
	for _, r := range label {
		if r >= '0' && r <= '9' {
			value = value*10 + int(r-'0')
			seen = true
			continue
		}
		if seen {
			break
		}
	}
	if !seen {
		return nil
	}
	return &value
}

// MapOutcomeNote reduces upstream result annotations to the known outcome
// types, passing unrecognized labels through verbatim.
func MapOutcomeNote(note string) string {
	text := strings.TrimSpace(note)
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "ko"):
		return fight.OutcomeTypeKO
	case strings.Contains(lower, "judge"), strings.Contains(lower, "decision"):
		return fight.OutcomeTypeJudges
	case strings.Contains(lower, "tap"):
		return fight.OutcomeTypeTapout
	default:
		return text
	}
}

func parseClockPart(part string, max int) (int, error) {
	part = strings.TrimSpace(part)
	if part == "" || len(part) > 2 {
		return 0, fmt.Errorf("invalid clock component %q", part)
	}
	value := 0
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid clock component %q", part)
		}
		value = value*10 + int(r-'0')
	}
	if value > max {
		return 0, fmt.Errorf("clock component %d out of range", value)
	}
	return value, nil
}
