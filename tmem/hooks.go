package tmem

import "github.com/sarchlab/tmemsim/hooking"

// HookPosClassificationChange marks a unit's classification changing. The
// hook item is a ClassificationChange.
var HookPosClassificationChange = &hooking.HookPos{Name: "ClassificationChange"}

// HookPosFinalize marks the end of a draw's overlap scan. The hook item is a
// FinalizeResult.
var HookPosFinalize = &hooking.HookPos{Name: "Finalize"}

// Cause tells why a classification changed.
type Cause uint8

// Causes of classification changes.
const (
	CauseConfiguration Cause = iota
	CauseBind
	CauseSelfOverlap
	CauseOverlap
	CauseInvalidate
	CauseInit
	CauseRestore
)

var causeNames = [...]string{
	CauseConfiguration: "configuration",
	CauseBind:          "bind",
	CauseSelfOverlap:   "self-overlap",
	CauseOverlap:       "overlap",
	CauseInvalidate:    "invalidate",
	CauseInit:          "init",
	CauseRestore:       "restore",
}

func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}

	return "unknown"
}

// ClassificationChange describes one unit moving between classifications.
type ClassificationChange struct {
	Unit  int
	From  Classification
	To    Classification
	Cause Cause
}

// FinalizeResult is the table as it stands after a draw's overlap scan.
type FinalizeResult struct {
	Used  UnitSet
	Units [NumUnits]UnitState
}
