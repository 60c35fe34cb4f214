// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorConflict      = "CONFLICT"
	ErrorUnauthorized  = "UNAUTHORIZED"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// 对局相关错误
	ErrorSessionNotFound = "SESSION_NOT_FOUND"
	ErrorProfileInvalid  = "PROFILE_INVALID"
	ErrorEventInvalid    = "EVENT_INVALID"
	ErrorGiftNotFound    = "GIFT_NOT_FOUND"

	// 内容生成相关错误
	ErrorJudgmentFailed        = "JUDGMENT_CALL_FAILURE"
	ErrorLLMServiceUnavailable = "LLM_SERVICE_UNAVAILABLE"
)
