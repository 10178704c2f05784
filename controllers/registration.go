package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

type RegistrationController struct {
	Svc *services.RegistrationService
}

// CheckEligibility is the UI preview. The email comes from the signed-in
// attendee via query parameter; staff tokens take precedence when present.
func (rc *RegistrationController) CheckEligibility() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		if tokenEmail, _, err := utils.VerifyToken(r); err == nil {
			email = tokenEmail
		}
		res, err := rc.Svc.CheckEligibility(mux.Vars(r)["id"], email)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, res)
	}
}

func (rc *RegistrationController) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegistrationInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()
		if err := utils.ValidateStruct(in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: err.Error()})
			return
		}

		p, err := rc.Svc.RegisterParticipant(mux.Vars(r)["id"], in)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		utils.ResponseJSON(w, p)
	}
}

type teamRequest struct {
	TeamName string                       `json:"team_name" validate:"required"`
	Members  []services.RegistrationInput `json:"members" validate:"required,min=1,dive"`
}

func (rc *RegistrationController) RegisterTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in teamRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()
		if err := utils.ValidateStruct(in); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: err.Error()})
			return
		}

		members, err := rc.Svc.RegisterTeam(mux.Vars(r)["id"], in.TeamName, in.Members)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		utils.ResponseJSON(w, members)
	}
}
