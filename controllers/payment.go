package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"genesis-events/models"
	"genesis-events/services"
	"genesis-events/utils"
)

type PaymentController struct {
	Svc *services.PaymentService
}

// SubmitUPI records a completed UPI payment from the attendee side. The
// claim goes to under_verification until an admin matches the transaction.
func (pc *PaymentController) SubmitUPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TransactionID == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "transaction_id is required"})
			return
		}
		defer r.Body.Close()

		p, err := pc.Svc.UpdateStatus(mux.Vars(r)["id"], models.PaymentUnderVerification, models.PayOnline, body.TransactionID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, p)
	}
}

// UploadReceipt accepts a receipt image, stores it, and queues the payment
// for verification. Serves both the first offline upload and re-uploads
// after a rejection.
func (pc *PaymentController) UploadReceipt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid form data"})
			return
		}
		file, header, err := r.FormFile("receipt")
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "receipt file is required"})
			return
		}
		defer file.Close()

		participantID := mux.Vars(r)["id"]
		fileName := fmt.Sprintf("receipts/%s-%d%s", participantID, time.Now().UnixNano(), filepath.Ext(header.Filename))
		url, err := utils.UploadReceiptToS3(file, fileName)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Message: "Failed to store receipt"})
			return
		}

		p, err := pc.Svc.ResubmitReceipt(participantID, url)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, p)
	}
}

// UpdateStatus is the admin decision endpoint: confirm a payment, mark it
// offline-paid, or reject it.
func (pc *PaymentController) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanVerifyPayments }); email == "" {
			return
		}

		var body struct {
			Status   models.PaymentStatus            `json:"status"`
			Method   models.ParticipantPaymentMethod `json:"method,omitempty"`
			Evidence string                          `json:"evidence,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "status is required"})
			return
		}
		defer r.Body.Close()

		p, err := pc.Svc.UpdateStatus(mux.Vars(r)["id"], body.Status, body.Method, body.Evidence)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, p)
	}
}

// AttachTransaction lets an admin pin a bank-statement transaction id to a
// participant. Duplicate ids across participants are rejected.
func (pc *PaymentController) AttachTransaction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if email, _ := requireStaff(w, r, func(p models.Permissions) bool { return p.CanVerifyPayments }); email == "" {
			return
		}

		var body struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Message: "Invalid body"})
			return
		}
		defer r.Body.Close()

		p, err := pc.Svc.AttachTransactionID(mux.Vars(r)["id"], body.TransactionID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		utils.ResponseJSON(w, p)
	}
}
