// Package statecatalog holds the closed state vocabularies shared by the LUW
// lifecycle and the per-repository participant lifecycle.
package statecatalog

import "github.com/ruteri/luw-coordination-registry/interfaces"

// LUW states.
const (
	LUWActive          interfaces.StateCode = 1
	LUWPrepareToCommit interfaces.StateCode = 2
	LUWCommitted       interfaces.StateCode = 3
	LUWAborted         interfaces.StateCode = 4
)

// Repository participant states.
const (
	RepositoryOpen       interfaces.StateCode = 1
	RepositoryReady      interfaces.StateCode = 2
	RepositoryCommitted  interfaces.StateCode = 3
	RepositoryRollbacked interfaces.StateCode = 4
)

// Vocabulary is a closed mapping from state codes to names, with an optional
// transition table used by strict coordinators.
type Vocabulary struct {
	name        string
	names       map[interfaces.StateCode]string
	transitions map[interfaces.StateCode][]interfaces.StateCode
}

// LUWStates is the LUW lifecycle vocabulary.
var LUWStates = &Vocabulary{
	name: "luw",
	names: map[interfaces.StateCode]string{
		LUWActive:          "active",
		LUWPrepareToCommit: "prepare_to_commit",
		LUWCommitted:       "committed",
		LUWAborted:         "aborted",
	},
	transitions: map[interfaces.StateCode][]interfaces.StateCode{
		LUWActive:          {LUWPrepareToCommit, LUWAborted},
		LUWPrepareToCommit: {LUWCommitted, LUWAborted},
	},
}

// RepositoryStates is the participant lifecycle vocabulary.
var RepositoryStates = &Vocabulary{
	name: "repository",
	names: map[interfaces.StateCode]string{
		RepositoryOpen:       "open",
		RepositoryReady:      "ready",
		RepositoryCommitted:  "committed",
		RepositoryRollbacked: "rollbacked",
	},
	transitions: map[interfaces.StateCode][]interfaces.StateCode{
		RepositoryOpen:  {RepositoryReady, RepositoryRollbacked},
		RepositoryReady: {RepositoryCommitted, RepositoryRollbacked},
	},
}

// Name returns the vocabulary name, used in logs.
func (v *Vocabulary) Name() string {
	return v.name
}

// Contains reports whether code belongs to the vocabulary.
func (v *Vocabulary) Contains(code interfaces.StateCode) bool {
	_, ok := v.names[code]
	return ok
}

// StateName returns the human-readable name of code.
func (v *Vocabulary) StateName(code interfaces.StateCode) (string, bool) {
	name, ok := v.names[code]
	return name, ok
}

// Code returns the state code for a name.
func (v *Vocabulary) Code(name string) (interfaces.StateCode, bool) {
	for code, n := range v.names {
		if n == name {
			return code, true
		}
	}
	return 0, false
}

// Terminal reports whether code has no outgoing transitions in the strict table.
func (v *Vocabulary) Terminal(code interfaces.StateCode) bool {
	return v.Contains(code) && len(v.transitions[code]) == 0
}

// Allowed reports whether the strict table permits from -> to.
func (v *Vocabulary) Allowed(from, to interfaces.StateCode) bool {
	for _, next := range v.transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
