package databases

// go generate: mockery --name HealthDataDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matricare/matricare-api/models"
)

const healthDataName = "healthdata"

// HealthDataDatabase contains the methods to use with the health data database
type HealthDataDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.HealthData, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type healthDataDatabase struct {
	db DatabaseHelper
}

// NewHealthDataDatabase initializes a new instance of health data database with the provided db connection
func NewHealthDataDatabase(db DatabaseHelper) HealthDataDatabase {
	return &healthDataDatabase{
		db: db,
	}
}

func (h *healthDataDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.HealthData, error) {
	var entries []models.HealthData
	cr := h.db.Collection(healthDataName).Find(ctx, filter, opts...)
	err := cr.Decode(&entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (h *healthDataDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return h.db.Collection(healthDataName).InsertOne(ctx, document, opts...)
}
