package handlers

import (
	"net/http"

	"mindmap/pkg/auth"
	"mindmap/pkg/common"
	pkgerrors "mindmap/pkg/errors"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; stored documents travel inside them
const maxBodyBytes = 1 << 20

// currentUser returns the authenticated user id or writes a 401
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil || user.UserID == "" {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return "", false
	}
	return user.UserID, true
}

// respondFailure logs server-side failures and writes the mapped error body
func respondFailure(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, data interface{}) {
	if status, _ := common.ErrorInfoFor(err); status >= http.StatusInternalServerError {
		fields := append(common.LogFields(r.Context()), zap.String("path", r.URL.Path), zap.Error(err))
		logger.Error("request failed", fields...)
	} else if pkgerrors.IsAppError(err) {
		logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	common.RespondAppError(w, r, err, data)
}
