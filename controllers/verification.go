package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	qrcode "github.com/skip2/go-qrcode"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

type VerificationController struct {
	Svc   *services.VerificationService
	Store services.Store
}

// Scan is the door check-in endpoint. The scanner posts the raw code; the
// response tells the volunteer whether to let the attendee through.
func (vc *VerificationController) Scan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanVerifyParticipants })
		if actor == "" {
			return
		}

		var body struct {
			Code         string `json:"code"`
			AssignedRoom string `json:"assigned_room,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "code is required"})
			return
		}
		defer r.Body.Close()

		p, ok, err := vc.Svc.VerifyByCode(body.Code, actor, body.AssignedRoom)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if !ok {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Message: "No participant for this code"})
			return
		}
		utils.ResponseJSON(w, p)
	}
}

func (vc *VerificationController) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanVerifyParticipants }); email == "" {
			return
		}
		utils.ResponseJSON(w, vc.Svc.Stats.Snapshot())
	}
}

// TicketPNG renders a participant's ticket code as a QR image.
func (vc *VerificationController) TicketPNG() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := vc.Store.GetParticipant(mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}
		png, err := qrcode.Encode(p.QRCode, qrcode.Medium, 256)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to render ticket"})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
