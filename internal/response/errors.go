package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Study groups ──────────────────────────────────────────────────
	ErrNameTaken     ErrCode = "NAME_TAKEN"
	ErrSubjectTaken  ErrCode = "SUBJECT_TAKEN"
	ErrGroupNotFound ErrCode = "GROUP_NOT_FOUND"
	ErrUserNotFound  ErrCode = "USER_NOT_FOUND"
	ErrAlreadyMember ErrCode = "ALREADY_MEMBER"
	ErrNotAMember    ErrCode = "NOT_A_MEMBER"

	// ─── Server ────────────────────────────────────────────────────────
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."

	case ErrNameTaken:
		return "A study group with this name already exists."
	case ErrSubjectTaken:
		return "A study group for this subject already exists."
	case ErrGroupNotFound:
		return "Study group not found."
	case ErrUserNotFound:
		return "User not found."
	case ErrAlreadyMember:
		return "User is already a member of this study group."
	case ErrNotAMember:
		return "User is not a member of this study group."

	case ErrNotFound:
		return "Resource not found."
	case ErrUnavailable:
		return "A required dependency is unavailable."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
