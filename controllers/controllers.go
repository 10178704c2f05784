package controllers

import (
	"errors"
	"log"
	"net/http"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

// respondServiceError maps service-layer errors onto HTTP responses.
// Eligibility denials and invariant violations carry their specific message;
// everything unexpected becomes a generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var elig *services.EligibilityError
	var inv *services.InvariantError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "Not found"})
	case errors.Is(err, services.ErrDuplicateTransaction):
		utils.RespondWithError(w, http.StatusConflict, models.Error{Message: err.Error()})
	case errors.As(err, &elig):
		utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: elig.Reason})
	case errors.As(err, &inv):
		utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: inv.Msg})
	default:
		log.Println("internal error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Internal server error"})
	}
}

// requireStaff authenticates the request and checks a permission. Returns
// the staff email, or "" after writing the error response.
func requireStaff(w http.ResponseWriter, r *http.Request, allowed func(models.Permissions) bool) (string, models.Role) {
	email, role, err := utils.VerifyToken(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
		return "", ""
	}
	if !allowed(role.Permissions()) {
		utils.RespondWithError(w, http.StatusForbidden, models.Error{Message: "Insufficient permissions"})
		return "", ""
	}
	return email, role
}
