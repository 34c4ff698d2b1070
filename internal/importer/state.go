package importer

// State is one step of the import workflow. Transitions are strictly linear
// forward with single-step back navigation; no state is ever skipped.
type State string

const (
	StateUpload       State = "upload"
	StateAnalysis     State = "analysis"
	StateConfirmation State = "confirmation"
	StateSuccess      State = "success"
)

// Position returns the ordinal of the state for the progress indicator.
func (s State) Position() int {
	switch s {
	case StateUpload:
		return 1
	case StateAnalysis:
		return 2
	case StateConfirmation:
		return 3
	case StateSuccess:
		return 4
	}
	return 0
}
