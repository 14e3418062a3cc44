package common

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "mindmap/pkg/errors"
	"mindmap/pkg/utils"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MetaInfo contains metadata about the response
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// StandardErrorCodes defines common error codes
var StandardErrorCodes = struct {
	ValidationError string
	NotFound        string
	Unauthorized    string
	Conflict        string
	InternalError   string
	BadRequest      string
	TooManyRequests string
}{
	ValidationError: "VALIDATION_ERROR",
	NotFound:        "NOT_FOUND",
	Unauthorized:    "UNAUTHORIZED",
	Conflict:        "CONFLICT",
	InternalError:   "INTERNAL_ERROR",
	BadRequest:      "BAD_REQUEST",
	TooManyRequests: "TOO_MANY_REQUESTS",
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, code, message string) {
	RespondErrorWithDetails(w, status, code, message, nil)
}

// RespondErrorWithDetails sends an error response with additional details
func RespondErrorWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	write(w, status, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// RespondAppError maps err onto a status code and error body.
// Errors that are not AppErrors are reported as internal without their message.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error, data interface{}) {
	status, info := ErrorInfoFor(err)
	write(w, status, APIResponse{
		Success: false,
		Data:    data,
		Error:   info,
		Meta: &MetaInfo{
			RequestID: ExtractRequestID(r),
			Timestamp: utils.NowRFC3339(),
		},
	})
}

// ErrorInfoFor returns the HTTP status and client-safe description of err
func ErrorInfoFor(err error) (int, *ErrorInfo) {
	appErr := pkgerrors.GetAppError(err)
	if appErr == nil {
		return http.StatusInternalServerError, &ErrorInfo{
			Code:    StandardErrorCodes.InternalError,
			Message: "internal server error",
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := appErr.Code
	if code == "" {
		code = codeFor(appErr.Type)
	}
	return status, &ErrorInfo{Code: code, Message: appErr.Message, Details: appErr.Details}
}

func codeFor(t pkgerrors.ErrorType) string {
	switch t {
	case pkgerrors.ErrorTypeValidation, pkgerrors.ErrorTypeDataIntegrity:
		return StandardErrorCodes.ValidationError
	case pkgerrors.ErrorTypeNotFound:
		return StandardErrorCodes.NotFound
	case pkgerrors.ErrorTypeConflict:
		return StandardErrorCodes.Conflict
	case pkgerrors.ErrorTypeUnauthorized:
		return StandardErrorCodes.Unauthorized
	default:
		return StandardErrorCodes.InternalError
	}
}

// ExtractRequestID extracts the request ID from the request context
func ExtractRequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id, ok := GetRequestID(r.Context()); ok && id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return r.Header.Get("X-Amzn-Trace-Id")
}

// ParseJSONBody parses JSON request body with size limit.
// Malformed bodies are returned as VALIDATION errors.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("request body too large")
		}
		return pkgerrors.NewValidationError("invalid request body").WithCause(err)
	}

	return nil
}

func write(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
