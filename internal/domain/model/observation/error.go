package observation

import "fmt"

// ObservationError represents domain-specific errors for observation records
type ObservationError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e ObservationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common observation errors
var (
	// ErrRecordNotFound indicates the referenced record does not exist.
	// Callers should re-resolve the target via the versioning service.
	ErrRecordNotFound = ObservationError{
		Code:    "OBS_RECORD_NOT_FOUND",
		Message: "observational record not found",
	}

	// ErrRecordConflict indicates an identity collision on create: a record
	// with the same (session, participant, version) already exists
	ErrRecordConflict = ObservationError{
		Code:    "OBS_RECORD_CONFLICT",
		Message: "a record with this session, participant and version already exists",
	}

	// ErrInvalidAnswer indicates an answer value outside the closed domain
	ErrInvalidAnswer = ObservationError{
		Code:    "OBS_INVALID_ANSWER",
		Message: "answer value is not part of the answer domain",
	}

	// ErrUnknownQuestion indicates an answer keyed by an id the catalog
	// does not contain
	ErrUnknownQuestion = ObservationError{
		Code:    "OBS_UNKNOWN_QUESTION",
		Message: "answer references a question id not present in the catalog",
	}

	// ErrIncompleteAnswers indicates a completion attempt without an answer
	// for every catalog question
	ErrIncompleteAnswers = ObservationError{
		Code:    "OBS_INCOMPLETE_ANSWERS",
		Message: "completion requires an answer for every catalog question",
	}

	// ErrInvalidTransition indicates an invalid record state transition
	ErrInvalidTransition = ObservationError{
		Code:    "OBS_INVALID_TRANSITION",
		Message: "invalid record state transition",
	}

	// ErrProtectedVersion indicates a delete that would break version
	// density; only the highest version of a pair may be deleted
	ErrProtectedVersion = ObservationError{
		Code:    "OBS_PROTECTED_VERSION",
		Message: "only the latest version of a record can be deleted",
	}

	// ErrOutOfOrderAnswer indicates an answer submitted for a question other
	// than the one at the workflow's current position
	ErrOutOfOrderAnswer = ObservationError{
		Code:    "OBS_OUT_OF_ORDER_ANSWER",
		Message: "answers must follow the catalog's question order",
	}

	// ErrWorkflowState indicates a workflow operation invoked in the wrong
	// state (e.g., submitting notes before all questions are answered)
	ErrWorkflowState = ObservationError{
		Code:    "OBS_WORKFLOW_STATE",
		Message: "operation not allowed in the current workflow state",
	}
)
