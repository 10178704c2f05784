package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

type EventController struct {
	Store services.Store
}

func (ec *EventController) AddEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents })
		if email == "" {
			return
		}

		var event models.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()

		if event.Name == "" || event.Date == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "name and date are required"})
			return
		}
		if err := services.ValidateEventSchedule(&event); err != nil {
			respondServiceError(w, err)
			return
		}

		event.ID = uuid.NewString()
		event.IsActive = true
		event.CurrentParticipants = 0
		event.CreatedBy = email
		nowStr := time.Now().Format("2006-01-02 15:04:05")
		event.CreatedAt = nowStr
		event.UpdatedAt = nowStr
		if event.PaymentMethod == "" {
			event.PaymentMethod = "both"
		}
		if event.EventDay == "" {
			event.EventDay = "day1"
		}

		if err := ec.Store.CreateEvent(&event); err != nil {
			log.Println("Error creating event:", err)
			respondServiceError(w, err)
			return
		}
		for date, closed := range event.DailyRegistrationClosure {
			if err := ec.Store.SetDailyClosure(event.ID, date, closed); err != nil {
				respondServiceError(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusCreated)
		utils.ResponseJSON(w, event)
	}
}

func (ec *EventController) GetEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("include_inactive") != "true"
		events, err := ec.Store.ListEvents(activeOnly)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if events == nil {
			events = []models.Event{}
		}
		utils.ResponseJSON(w, events)
	}
}

func (ec *EventController) GetEventByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := ec.Store.GetEvent(mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, event)
	}
}

func (ec *EventController) UpdateEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents }); email == "" {
			return
		}

		existing, err := ec.Store.GetEvent(mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}

		var event models.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()

		event.ID = existing.ID
		event.CurrentParticipants = existing.CurrentParticipants
		event.CreatedBy = existing.CreatedBy
		event.CreatedAt = existing.CreatedAt
		event.UpdatedAt = time.Now().Format("2006-01-02 15:04:05")
		if err := services.ValidateEventSchedule(&event); err != nil {
			respondServiceError(w, err)
			return
		}

		if err := ec.Store.UpdateEvent(&event); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, event)
	}
}

func (ec *EventController) DeleteEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents }); email == "" {
			return
		}
		hard := r.URL.Query().Get("hard") == "true"
		if err := ec.Store.DeleteEvent(mux.Vars(r)["id"], hard); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, map[string]string{"message": "Event deleted"})
	}
}

// SetDailyClosure toggles the regular registration path for one date. The
// on-the-spot path is never affected.
func (ec *EventController) SetDailyClosure() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents }); email == "" {
			return
		}

		var body struct {
			Date   string `json:"date"`
			Closed bool   `json:"closed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Date == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "date is required"})
			return
		}
		defer r.Body.Close()

		eventID := mux.Vars(r)["id"]
		if _, err := ec.Store.GetEvent(eventID); err != nil {
			respondServiceError(w, err)
			return
		}
		if err := ec.Store.SetDailyClosure(eventID, body.Date, body.Closed); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{"date": body.Date, "closed": body.Closed})
	}
}

// UpdateRegistrationControls edits the after-deadline overrides only.
func (ec *EventController) UpdateRegistrationControls() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanManageEvents }); email == "" {
			return
		}

		event, err := ec.Store.GetEvent(mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}

		var controls models.RegistrationControls
		if err := json.NewDecoder(r.Body).Decode(&controls); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()

		event.RegistrationControls = controls
		event.UpdatedAt = time.Now().Format("2006-01-02 15:04:05")
		if err := ec.Store.UpdateEvent(event); err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, event)
	}
}
