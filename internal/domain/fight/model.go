package fight

import (
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLose      Outcome = "lose"
	OutcomeUndecided Outcome = "undecided"
)

// CompetitionUnspecified buckets fights whose upstream carried no
// competition label.
const CompetitionUnspecified = "unspecified"

const (
	OutcomeTypeKO     = "KO"
	OutcomeTypeJudges = "Judges Decision"
	OutcomeTypeTapout = "Tapout"
)

// Record is the canonical persisted representation of one fight between a
// tracked robot and an opponent. Undecided is a valid state: the fight is
// scheduled or in progress and has no result yet.
type Record struct {
	ID              int64
	OwnerRobotName  string
	OwnerRobotID    int64
	OpponentName    string
	Competition     string
	Cage            *int
	FightTime       string
	DurationSeconds *int
	Outcome         Outcome
	OutcomeType     string
	LastUpdated     time.Time
}

// Identity is the natural key of a fight. Cage and time can drift between
// scrape cycles as an event reschedules; the triplet cannot.
type Identity struct {
	OwnerRobotName string
	OpponentName   string
	Competition    string
}

func (r Record) Identity() Identity {
	return Identity{
		OwnerRobotName: r.OwnerRobotName,
		OpponentName:   r.OpponentName,
		Competition:    NormalizeCompetition(r.Competition),
	}
}

// Decided reports whether the fight has a result.
func (r Record) Decided() bool {
	return r.Outcome == OutcomeWin || r.Outcome == OutcomeLose
}

func NormalizeCompetition(value string) string {
	label := strings.TrimSpace(value)
	if label == "" {
		return CompetitionUnspecified
	}
	return label
}

func NormalizeOutcome(value string) Outcome {
	switch Outcome(strings.ToLower(strings.TrimSpace(value))) {
	case OutcomeWin:
		return OutcomeWin
	case OutcomeLose:
		return OutcomeLose
	default:
		return OutcomeUndecided
	}
}
