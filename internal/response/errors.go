package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionRequired ErrCode = "SESSION_REQUIRED"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrExamFinished    ErrCode = "EXAM_FINISHED"
	ErrResultNotReady  ErrCode = "RESULT_NOT_READY"

	// ─── Exam composition ──────────────────────────────────────────────
	ErrExamUnavailable ErrCode = "EXAM_UNAVAILABLE"
	ErrPoolNotFound    ErrCode = "POOL_NOT_FOUND"

	// ─── Generation ────────────────────────────────────────────────────
	ErrGenerationDisabled ErrCode = "GENERATION_DISABLED"
	ErrJobNotFound        ErrCode = "JOB_NOT_FOUND"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	case ErrSessionRequired:
		return "Start an exam before requesting questions."
	case ErrSessionNotFound:
		return "No active exam session was found. It may have expired."
	case ErrExamFinished:
		return "This exam has already finished."
	case ErrResultNotReady:
		return "The exam is still in progress; no result is available yet."

	case ErrExamUnavailable:
		return "An exam could not be composed. Please try again."
	case ErrPoolNotFound:
		return "The requested question pool does not exist or has expired."

	case ErrGenerationDisabled:
		return "Question generation is not configured on this server."
	case ErrJobNotFound:
		return "The generation job does not exist or has expired."

	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Only PDF documents are supported."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the size limit."

	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."

	case ErrInternal:
		return "An internal error occurred."
	default:
		return "Unknown error."
	}
}
