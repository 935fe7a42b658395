package event

import "github.com/nidhogg/ambience/internal/sound"

// Level2 ambience tuning, in ticks.
const (
	Level2Name             = "level2_ambience"
	Level2DefaultDuration  = 200
	Level2AmbienceDuration = 720
)

// Level2Outcome enumerates the level 2 ambience variants.
type Level2Outcome int

const (
	Level2Creaking1 Level2Outcome = iota
	Level2Creaking2
	Level2Ambient // catch-all, holds the long ambience track
	level2OutcomeCount
)

// level2Outcomes is indexed by Level2Outcome. A variant added without an
// entry leaves a zero Outcome here and the table fails to build at init.
var level2Outcomes = [level2OutcomeCount]Outcome{
	Level2Creaking1: {Name: "creaking1", Sound: sound.Creaking1},
	Level2Creaking2: {Name: "creaking2", Sound: sound.Creaking2},
	Level2Ambient:   {Name: "ambience", Sound: sound.Level2Ambience, Duration: Level2AmbienceDuration},
}

var level2Table = MustTable(level2Outcomes[:]...)

// Outcome returns the table entry for v. Unknown values get the catch-all.
func (v Level2Outcome) Outcome() Outcome {
	if v < 0 || v >= level2OutcomeCount {
		return level2Outcomes[Level2Ambient]
	}
	return level2Outcomes[v]
}

// String implements fmt.Stringer.
func (v Level2Outcome) String() string {
	if v < 0 || v >= level2OutcomeCount {
		return "unknown"
	}
	return level2Outcomes[v].Name
}

// Level2Table returns the shared level 2 outcome table.
func Level2Table() *Table { return level2Table }

// NewLevel2Ambience creates the level 2 ambience event: two short creaks that
// keep the default window, or the full ambience track with a long window.
// All three are equally likely.
func NewLevel2Ambience(opts ...Option) *Ambience {
	return NewAmbience(Level2Name, Level2DefaultDuration, level2Table, opts...)
}
