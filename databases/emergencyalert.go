package databases

// go generate: mockery --name EmergencyAlertDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matricare/matricare-api/models"
)

const emergencyAlertName = "emergencyalerts"

// EmergencyAlertDatabase contains the methods to use with the emergency alert database
type EmergencyAlertDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyAlert, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type emergencyAlertDatabase struct {
	db DatabaseHelper
}

// NewEmergencyAlertDatabase initializes a new instance of emergency alert database with the provided db connection
func NewEmergencyAlertDatabase(db DatabaseHelper) EmergencyAlertDatabase {
	return &emergencyAlertDatabase{
		db: db,
	}
}

func (e *emergencyAlertDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.EmergencyAlert, error) {
	var alerts []models.EmergencyAlert
	cr := e.db.Collection(emergencyAlertName).Find(ctx, filter, opts...)
	err := cr.Decode(&alerts)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (e *emergencyAlertDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return e.db.Collection(emergencyAlertName).InsertOne(ctx, document, opts...)
}
