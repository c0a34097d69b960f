package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/api/scheduler"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{
		Doctors:  databases.NewDoctorDatabase(a.dbHelper),
		Patients: databases.NewPatientDatabase(a.dbHelper),
	}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	chatHub := NewChatHub()
	d := Doctor{DB: databases.NewDoctorDatabase(a.dbHelper)}
	p := Patient{DB: databases.NewPatientDatabase(a.dbHelper)}
	u := User{DoctorDB: databases.NewDoctorDatabase(a.dbHelper), PatientDB: databases.NewPatientDatabase(a.dbHelper)}
	chat := Chat{
		DB:        databases.NewChatDatabase(a.dbHelper),
		DoctorDB:  databases.NewDoctorDatabase(a.dbHelper),
		PatientDB: databases.NewPatientDatabase(a.dbHelper),
		Hub:       chatHub,
	}
	appt := Appointment{DB: databases.NewAppointmentDatabase(a.dbHelper)}
	health := HealthData{DB: databases.NewHealthDataDatabase(a.dbHelper)}
	notif := Notification{DB: databases.NewNotificationDatabase(a.dbHelper)}
	emergency := Emergency{DB: databases.NewEmergencyAlertDatabase(a.dbHelper)}
	billing := Billing{}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// websocket endpoints sit outside the /api/v1 auth chain; the relay
	// carries no credentials today
	r.HandleFunc("/ws/chat", chat.HandleChatWebSocket)
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/refresh", http.HandlerFunc(u.RefreshTokenHandler)).Methods("POST")

	apiCreate.Handle("/doctor/register", http.HandlerFunc(d.RegisterDoctorHandler)).Methods("POST")
	apiCreate.Handle("/doctor/login", http.HandlerFunc(d.LoginDoctorHandler)).Methods("POST")
	apiCreate.Handle("/doctor/{doctor_id}", api.Middleware(http.HandlerFunc(d.DoctorByIDHandler))).Methods("GET")
	apiCreate.Handle("/doctor/{doctor_id}", api.Middleware(http.HandlerFunc(d.UpdateDoctorHandler))).Methods("PUT")
	apiCreate.Handle("/doctor/{doctor_id}", api.Middleware(http.HandlerFunc(d.DeleteDoctorHandler))).Methods("DELETE")
	apiCreate.Handle("/doctors", api.Middleware(http.HandlerFunc(d.DoctorsHandler))).Methods("GET")

	apiCreate.Handle("/patient/register", http.HandlerFunc(p.RegisterPatientHandler)).Methods("POST")
	apiCreate.Handle("/patient/login", http.HandlerFunc(p.LoginPatientHandler)).Methods("POST")
	apiCreate.Handle("/patient/{patient_id}", api.Middleware(http.HandlerFunc(p.PatientByIDHandler))).Methods("GET")
	apiCreate.Handle("/patient/{patient_id}", api.Middleware(http.HandlerFunc(p.UpdatePatientHandler))).Methods("PUT")
	apiCreate.Handle("/patient/{patient_id}", api.Middleware(http.HandlerFunc(p.DeletePatientHandler))).Methods("DELETE")
	apiCreate.Handle("/patients", api.Middleware(http.HandlerFunc(p.PatientsHandler))).Methods("GET")

	apiCreate.Handle("/users/search", api.Middleware(http.HandlerFunc(u.SearchUsersHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserByIDHandler))).Methods("GET")

	apiCreate.Handle("/chat/send", api.Middleware(http.HandlerFunc(chat.SendMessageHandler))).Methods("POST")
	apiCreate.Handle("/chat/{participantA}/{participantB}", api.Middleware(http.HandlerFunc(chat.ConversationHandler))).Methods("GET")
	apiCreate.Handle("/chat/{message_id}", api.Middleware(http.HandlerFunc(chat.EditMessageHandler))).Methods("PUT")
	apiCreate.Handle("/chat/{message_id}", api.Middleware(http.HandlerFunc(chat.DeleteMessageHandler))).Methods("DELETE")

	apiCreate.Handle("/appointment", api.Middleware(http.HandlerFunc(appt.BookAppointmentHandler))).Methods("POST")
	apiCreate.Handle("/appointments", api.Middleware(http.HandlerFunc(appt.AppointmentsHandler))).Methods("GET")
	apiCreate.Handle("/appointments/user/{user_id}", api.Middleware(http.HandlerFunc(appt.AppointmentsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/appointments/doctor/{doctor_id}", api.Middleware(http.HandlerFunc(appt.AppointmentsByDoctorIDHandler))).Methods("GET")
	apiCreate.Handle("/appointment/{appointment_id}/status", api.Middleware(http.HandlerFunc(appt.UpdateAppointmentStatusHandler))).Methods("PATCH")
	apiCreate.Handle("/appointment/{appointment_id}", api.Middleware(http.HandlerFunc(appt.DeleteAppointmentHandler))).Methods("DELETE")

	apiCreate.Handle("/health-data", api.Middleware(http.HandlerFunc(health.TrackHealthDataHandler))).Methods("POST")
	apiCreate.Handle("/health-data/user/{user_id}", api.Middleware(http.HandlerFunc(health.HealthDataByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/health-tip", api.Middleware(http.HandlerFunc(health.HealthTipHandler))).Methods("GET")

	apiCreate.Handle("/notifications", api.Middleware(http.HandlerFunc(notif.CreateNotificationHandler))).Methods("POST")
	apiCreate.Handle("/notifications/user/{user_id}", api.Middleware(http.HandlerFunc(notif.NotificationsByUserIDHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", api.Middleware(http.HandlerFunc(notif.MarkNotificationReadHandler))).Methods("PUT")

	apiCreate.Handle("/emergency/alert", api.Middleware(http.HandlerFunc(emergency.SendEmergencyAlertHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")
	apiCreate.Handle("/upload-image", api.Middleware(http.HandlerFunc(cloudinaryHandler.UploadImageHandler))).Methods("POST")

	apiCreate.Handle("/create-checkout-session", api.Middleware(http.HandlerFunc(billing.CreateCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/success", http.HandlerFunc(billing.HandleSuccessRedirect)).Methods("GET")
	apiCreate.Handle("/cancel", http.HandlerFunc(billing.HandleCancelRedirect)).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("matricare-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// start the appointment reminder scheduler
	a.Scheduler = scheduler.NewScheduler(
		databases.NewAppointmentDatabase(a.dbHelper),
		databases.NewNotificationDatabase(a.dbHelper),
		databases.NewPatientDatabase(a.dbHelper),
		databases.NewDoctorDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
