package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"genesis-events/controllers"
	"genesis-events/driver"
	"genesis-events/services"
)

var db *sql.DB

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment")
	}
	if os.Getenv("SECRET") == "" {
		log.Fatal("SECRET variable is not set")
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db = driver.ConnectDB()
	defer db.Close()
	if err := driver.Migrate(db); err != nil {
		log.Fatal("migrations failed: ", err)
	}

	store := services.NewSQLStore(db)
	roles := services.NewStoreRoleResolver(store,
		services.NewEnvRoleResolver(os.Getenv("ADMIN_EMAILS"), os.Getenv("VOLUNTEER_EMAILS")))
	notifier := services.NewNotifierFromEnv()

	registrationSvc := services.NewRegistrationService(store, roles)
	paymentSvc := services.NewPaymentService(store, notifier)
	verificationSvc := services.NewVerificationService(store)

	authController := controllers.AuthController{Store: store}
	eventController := controllers.EventController{Store: store}
	registrationController := controllers.RegistrationController{Svc: registrationSvc}
	paymentController := controllers.PaymentController{Svc: paymentSvc}
	verificationController := controllers.VerificationController{Svc: verificationSvc, Store: store}

	router := mux.NewRouter()

	router.HandleFunc("/login", authController.Login()).Methods("POST")
	router.HandleFunc("/getMe", authController.GetMe()).Methods("GET")
	router.HandleFunc("/staff", authController.CreateStaff()).Methods("POST")

	router.HandleFunc("/events", eventController.GetEvents()).Methods("GET")
	router.HandleFunc("/events", eventController.AddEvent()).Methods("POST")
	router.HandleFunc("/events/{id}", eventController.GetEventByID()).Methods("GET")
	router.HandleFunc("/events/{id}", eventController.UpdateEvent()).Methods("PUT")
	router.HandleFunc("/events/{id}", eventController.DeleteEvent()).Methods("DELETE")
	router.HandleFunc("/events/{id}/daily-closure", eventController.SetDailyClosure()).Methods("PUT")
	router.HandleFunc("/events/{id}/registration-controls", eventController.UpdateRegistrationControls()).Methods("PUT")

	router.HandleFunc("/events/{id}/eligibility", registrationController.CheckEligibility()).Methods("GET")
	router.HandleFunc("/events/{id}/register", registrationController.Register()).Methods("POST")
	router.HandleFunc("/events/{id}/register-team", registrationController.RegisterTeam()).Methods("POST")

	router.HandleFunc("/participants/{id}/upi", paymentController.SubmitUPI()).Methods("POST")
	router.HandleFunc("/participants/{id}/receipt", paymentController.UploadReceipt()).Methods("POST")
	router.HandleFunc("/participants/{id}/payment-status", paymentController.UpdateStatus()).Methods("PUT")
	router.HandleFunc("/participants/{id}/transaction", paymentController.AttachTransaction()).Methods("PUT")
	router.HandleFunc("/participants/{id}/ticket.png", verificationController.TicketPNG()).Methods("GET")

	router.HandleFunc("/scan", verificationController.Scan()).Methods("POST")
	router.HandleFunc("/scan/stats", verificationController.Stats()).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("Server started on port " + port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
