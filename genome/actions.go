// Package genome implements the full genetic encoding of one agent: an
// ordered sequence of genes (action code + expression tree) plus a
// fixed-layout metagenome of tunable numeric parameters. The package owns
// parsing and serialization of the textual encoding, offset-reference
// linking, fuzzification of comparison operators, and the mutation and
// crossover operators that build each new generation.
package genome

// Action is the discrete behaviour a gene contributes to.
//
// The first group are effect actions: their gene values accumulate into
// intent weights and at most one fires per tick. The rest are mental actions
// performed immediately during the think phase.
type Action int

const (
	Nop Action = iota
	Forward
	Backward
	LeftTurn
	RightTurn
	Suck
	Wait
	Call
	Promote
	Demote
	Remember
	Forget
	SetState

	NumActions = 13
)

// Effects lists the actions with a world effect, in the fixed iteration
// order used for intent accumulation and tie-breaking.
var Effects = [...]Action{Forward, Backward, LeftTurn, RightTurn, Suck, Wait}

var actionNames = [NumActions]string{
	"Nop", "Forward", "Backward", "LeftTurn", "RightTurn", "Suck", "Wait",
	"Call", "Promote", "Demote", "Remember", "Forget", "SetState",
}

func (a Action) String() string {
	if a < 0 || a >= NumActions {
		return "?"
	}
	return actionNames[a]
}

// IsEffect reports whether the action affects the world (as opposed to a
// mental action executed during think).
func (a Action) IsEffect() bool {
	return a >= Forward && a <= Wait
}

// Sensor identifies one readable input channel of an agent.
//
// Bump, Rand, Tile, Left, Right and Front are snapshotted once per tick by
// the sense phase; PosX, PosY, OriX, OriY, State and Mem are read live
// during evaluation.
type Sensor int

const (
	Bump Sensor = iota
	Rand
	Tile
	Left
	Right
	Front
	PosX
	PosY
	OriX
	OriY
	State
	Mem

	NumSensors = 12
)
