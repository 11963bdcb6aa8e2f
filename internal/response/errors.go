package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Assessment-specific ───────────────────────────────────────────
	ErrAssessmentNotStarted ErrCode = "ASSESSMENT_NOT_STARTED"
	ErrAssessmentEnded      ErrCode = "ASSESSMENT_ENDED"
	ErrAssessmentCompleted  ErrCode = "ASSESSMENT_COMPLETED"
	ErrIdentityMismatch     ErrCode = "IDENTITY_MISMATCH"
	ErrSessionFinished      ErrCode = "SESSION_FINISHED"
	ErrDuplicateAnswer      ErrCode = "DUPLICATE_ANSWER"
	ErrInvalidOption        ErrCode = "INVALID_OPTION"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Nama pengguna atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."

	// ─── Assessment-specific ───────────────────────────────────────────
	case ErrAssessmentNotStarted:
		return "Asesmen ini belum dimulai."
	case ErrAssessmentEnded:
		return "Asesmen ini telah berakhir."
	case ErrAssessmentCompleted:
		return "Anda sudah menyelesaikan asesmen ini."
	case ErrIdentityMismatch:
		return "Identitas peserta tidak cocok dengan sesi ini."
	case ErrSessionFinished:
		return "Sesi ini sudah selesai."
	case ErrDuplicateAnswer:
		return "Pertanyaan ini sudah dijawab."
	case ErrInvalidOption:
		return "Pilihan jawaban tidak valid untuk pertanyaan ini."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
