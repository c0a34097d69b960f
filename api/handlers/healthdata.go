package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// HealthData exported for testing purposes
type HealthData struct {
	DB databases.HealthDataDatabase
}

var healthTips = []string{
	"Drink at least 8 glasses of water a day to stay hydrated during pregnancy.",
	"Take a short walk every day; gentle exercise supports circulation.",
	"Eat iron-rich foods like leafy greens and beans to prevent anemia.",
	"Sleep on your left side to improve blood flow to your baby.",
	"Attend every scheduled prenatal checkup, even when you feel well.",
	"Take your prenatal vitamins with food to reduce nausea.",
	"Limit caffeine to one small cup of coffee per day.",
	"Practice slow breathing for a few minutes when you feel stressed.",
	"Snack on fruit and nuts instead of processed sugary foods.",
	"Track your baby's kicks daily in the third trimester.",
}

type trackHealthDataRequest struct {
	UserID        string               `json:"userId"`
	BloodPressure models.BloodPressure `json:"bloodPressure"`
	Weight        float64              `json:"weight"`
}

// TrackHealthDataHandler stores a blood pressure and weight reading
func (h HealthData) TrackHealthDataHandler(w http.ResponseWriter, r *http.Request) {
	var req trackHealthDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userId is required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	entry := models.HealthData{
		ID:            primitive.NewObjectID(),
		UserID:        req.UserID,
		BloodPressure: req.BloodPressure,
		Weight:        req.Weight,
		CreatedAt:     primitive.NewDateTimeFromTime(time.Now()),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := h.DB.InsertOne(ctx, entry); err != nil {
		config.ErrorStatus("failed to track health data", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(entry)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// HealthDataByUserIDHandler returns a user's readings, newest first
func (h HealthData) HealthDataByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sortOpt := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	dbResp, err := h.DB.Find(ctx, bson.M{"userId": userID}, sortOpt)
	if err != nil {
		config.ErrorStatus("failed to get health data", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.HealthData{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HealthTipHandler returns a random pregnancy health tip
func (h HealthData) HealthTipHandler(w http.ResponseWriter, r *http.Request) {
	tip := healthTips[rand.Intn(len(healthTips))]
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tip": tip,
	})
}
