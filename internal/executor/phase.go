package executor

// Phase represents a stage in the execution lifecycle.
type Phase int

const (
	PhaseIdle         Phase = iota // No work started.
	PhasePrecondition              // Checking the working tree.
	PhaseBackedUp                  // Backup taken (or skipped), ready to commit.
	PhaseCommitting                // Walking the plan, creating commits.
	PhaseCompleted                 // Plan finished (possibly with failures).
	PhaseAborted                   // Execution stopped early.
	PhaseRestoring                 // Rolling back to the backup.
)

// String returns the snake_case name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePrecondition:
		return "precondition"
	case PhaseBackedUp:
		return "backed_up"
	case PhaseCommitting:
		return "committing"
	case PhaseCompleted:
		return "completed"
	case PhaseAborted:
		return "aborted"
	case PhaseRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}
