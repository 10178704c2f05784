package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

type AuthController struct {
	Store services.Store
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ac *AuthController) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()
		if err := utils.ValidateStruct(in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: err.Error()})
			return
		}

		u, err := ac.Store.GetStaffByEmail(in.Email)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid credentials"})
			return
		}
		if !utils.ComparePasswords(u.Password, []byte(in.Password)) {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(*u, 12*time.Hour)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to issue token"})
			return
		}
		utils.ResponseJSON(w, map[string]string{"token": token, "role": string(u.Role)})
	}
}

type createStaffRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	FullName string      `json:"full_name,omitempty"`
	Role     models.Role `json:"role" validate:"required,oneof=admin volunteer"`
}

// CreateStaff provisions an admin or volunteer account. Admins only.
func (ac *AuthController) CreateStaff() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents }); email == "" {
			return
		}

		var in createStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()
		if err := utils.ValidateStruct(in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: err.Error()})
			return
		}

		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to hash password"})
			return
		}
		u := &models.StaffUser{
			ID:       uuid.NewString(),
			Email:    in.Email,
			Password: hash,
			FullName: in.FullName,
			Role:     in.Role,
		}
		if err := ac.Store.CreateStaff(u); err != nil {
			respondServiceError(w, err)
			return
		}
		u.Password = ""
		w.WriteHeader(http.StatusCreated)
		utils.ResponseJSON(w, u)
	}
}

func (ac *AuthController) GetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, role, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Message: "Unauthorized"})
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{
			"email":       email,
			"role":        role,
			"permissions": role.Permissions(),
		})
	}
}
