package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSessionExpired  ErrCode = "SESSION_EXPIRED"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Draft / authoring ─────────────────────────────────────────────
	ErrDraftInvalid     ErrCode = "DRAFT_INVALID"
	ErrQuestionCeiling  ErrCode = "QUESTION_CEILING_REACHED"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"

	// ─── Attempt / submission ──────────────────────────────────────────
	ErrTestNotFound     ErrCode = "TEST_NOT_FOUND"
	ErrCodeInvalid      ErrCode = "CODE_INVALID"
	ErrManualScore      ErrCode = "MANUAL_SCORE_INVALID"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrNameRequired     ErrCode = "NAME_REQUIRED"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstream ErrCode = "UPSTREAM_ERROR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// Messages are Uzbek, matching the platform's audience.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Avtorizatsiya tokeni talab qilinadi."
	case ErrTokenInvalid:
		return "Avtorizatsiya tokeni yaroqsiz."
	case ErrTokenExpired:
		return "Avtorizatsiya tokeni muddati tugagan."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bu amal uchun ruxsat yo'q."
	case ErrAdminAccessOnly:
		return "Bu bo'lim faqat administratorlar uchun."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Ma'lumotlarda xatolik aniqlandi."
	case ErrInvalidID:
		return "ID formati noto'g'ri."
	case ErrInvalidPayload:
		return "So'rov ma'lumotlari noto'g'ri."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ma'lumot topilmadi."
	case ErrSessionExpired:
		return "Sessiya muddati tugagan. Qaytadan boshlang."
	case ErrActionForbidden:
		return "Bu amalni bajarish mumkin emas."

	// ─── Draft / authoring ─────────────────────────────────────────────
	case ErrDraftInvalid:
		return "Test ma'lumotlari to'liq emas."
	case ErrQuestionCeiling:
		return "Maksimal savollar soniga yetdingiz."
	case ErrQuestionNotFound:
		return "Savol topilmadi."

	// ─── Attempt / submission ──────────────────────────────────────────
	case ErrTestNotFound:
		return "Xatolik: Test topilmadi!"
	case ErrCodeInvalid:
		return "Test kodi noto'g'ri."
	case ErrManualScore:
		return "Ball noto'g'ri kiritilgan."
	case ErrAlreadySubmitted:
		return "Siz bu testni allaqachon topshirgansiz."
	case ErrNameRequired:
		return "Ism-familiyangizni kiriting."

	// ─── Upstream ──────────────────────────────────────────────────────
	case ErrUpstream:
		return "Xatolik yuz berdi!"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "So'rovlar soni juda ko'p. Birozdan so'ng qayta urinib ko'ring."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ichki server xatoligi yuz berdi."
	default:
		return "Kutilmagan xatolik yuz berdi."
	}
}
