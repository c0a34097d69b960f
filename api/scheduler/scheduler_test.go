package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/databases/mocks"
	"github.com/matricare/matricare-api/models"
)

func newTestScheduler(db databases.DatabaseHelper) *Scheduler {
	return NewScheduler(
		databases.NewAppointmentDatabase(db),
		databases.NewNotificationDatabase(db),
		databases.NewPatientDatabase(db),
		databases.NewDoctorDatabase(db),
	)
}

func TestScheduler_SendAppointmentRemindersNoUpcoming(t *testing.T) {
	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil)
	apptConn := &mocks.CollectionHelper{}
	apptConn.On("Find", mock.Anything, mock.Anything).Return(cursor)

	notifConn := &mocks.CollectionHelper{}

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "appointments").Return(apptConn)
	db.On("Collection", "notifications").Return(notifConn)

	s := newTestScheduler(db)
	s.sendAppointmentReminders()

	notifConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestScheduler_RemindAppointmentStoresNotificationAndMarksReminded(t *testing.T) {
	appt := models.Appointment{
		ID:       primitive.NewObjectID(),
		UserID:   primitive.NewObjectID().Hex(),
		DoctorID: primitive.NewObjectID().Hex(),
		Date:     primitive.NewDateTimeFromTime(time.Now().Add(6 * time.Hour)),
		Reason:   "monthly checkup",
		Status:   models.AppointmentPending,
	}

	notFound := &mocks.SingleResultHelper{}
	notFound.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))

	doctorConn := &mocks.CollectionHelper{}
	doctorConn.On("FindOne", mock.Anything, mock.Anything).Return(notFound)

	// patient lookup fails too, so no email leaves the building
	patientConn := &mocks.CollectionHelper{}
	patientConn.On("FindOne", mock.Anything, mock.Anything).Return(notFound)

	notifConn := &mocks.CollectionHelper{}
	notifConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	apptConn := &mocks.CollectionHelper{}
	apptConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	db := &mocks.DatabaseHelper{}
	db.On("Collection", "doctors").Return(doctorConn)
	db.On("Collection", "patients").Return(patientConn)
	db.On("Collection", "notifications").Return(notifConn)
	db.On("Collection", "appointments").Return(apptConn)

	s := newTestScheduler(db)
	s.remindAppointment(context.Background(), appt)

	notifConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
	apptConn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduler_StartAndStop(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	s := newTestScheduler(db)

	s.Start()
	s.Stop()

	assert.NotNil(t, s.cron)
}
