package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// Scheduler handles periodic background jobs for appointment reminders
type Scheduler struct {
	cron    *cron.Cron
	ApptDB  databases.AppointmentDatabase
	NotifDB databases.NotificationDatabase
	PDB     databases.PatientDatabase
	DDB     databases.DoctorDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	apptDB databases.AppointmentDatabase,
	notifDB databases.NotificationDatabase,
	pDB databases.PatientDatabase,
	dDB databases.DoctorDatabase,
) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		ApptDB:  apptDB,
		NotifDB: notifDB,
		PDB:     pDB,
		DDB:     dDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Remind patients of upcoming appointments every hour on the hour
	_, err := s.cron.AddFunc("0 * * * *", s.sendAppointmentReminders)
	if err != nil {
		zap.S().Errorw("failed to register appointment reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Appointment reminder scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Appointment reminder scheduler stopped")
}

// sendAppointmentReminders notifies patients of appointments happening in
// the next 24 hours that have not been reminded yet
func (s *Scheduler) sendAppointmentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	oneDayFromNow := now.Add(24 * time.Hour)

	filter := bson.M{
		"status": bson.M{"$in": []string{models.AppointmentPending, models.AppointmentConfirmed}},
		"date": bson.M{
			"$gt": primitive.NewDateTimeFromTime(now),
			"$lt": primitive.NewDateTimeFromTime(oneDayFromNow),
		},
		"reminded": bson.M{"$ne": true},
	}

	appointments, err := s.ApptDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find upcoming appointments", "error", err)
		return
	}

	for _, appt := range appointments {
		s.remindAppointment(ctx, appt)
	}

	if len(appointments) > 0 {
		zap.S().Infow("Appointment reminder job complete", "remindersSent", len(appointments))
	}
}

func (s *Scheduler) remindAppointment(ctx context.Context, appt models.Appointment) {
	doctorName := "your doctor"
	if dID, err := primitive.ObjectIDFromHex(appt.DoctorID); err == nil {
		if doctor, err := s.DDB.FindOne(ctx, bson.M{"_id": dID}); err == nil {
			doctorName = "Dr. " + doctor.Name
		}
	}

	when := appt.Date.Time().Format("Jan 2 at 3:04 PM")
	message := fmt.Sprintf("Reminder: you have an appointment with %s on %s.", doctorName, when)

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    appt.UserID,
		Type:      "reminder",
		Message:   message,
		IsRead:    false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.NotifDB.InsertOne(ctx, notification); err != nil {
		zap.S().Errorw("failed to store reminder notification", "error", err, "appointmentId", appt.ID.Hex())
		return
	}

	s.emailPatient(ctx, appt.UserID, message)

	if _, err := s.ApptDB.UpdateOne(ctx, bson.M{"_id": appt.ID}, bson.M{
		"$set": bson.M{"reminded": true},
	}); err != nil {
		zap.S().Warnw("failed to mark appointment as reminded", "error", err, "appointmentId", appt.ID.Hex())
	}
}

func (s *Scheduler) emailPatient(ctx context.Context, userID, message string) {
	pID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}
	patient, err := s.PDB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil || patient.Email == "" {
		return
	}

	from := mail.NewEmail("MatriCare", "no-reply@matricare.health")
	to := mail.NewEmail(patient.Name, patient.Email)
	subject := "Upcoming Appointment Reminder"
	email := mail.NewSingleEmail(from, subject, to, message, "<p>"+message+"</p>")
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(email)
	if err != nil {
		zap.S().Errorw("failed to send reminder email", "error", err, "userId", userID)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
}
