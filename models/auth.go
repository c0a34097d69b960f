package models

// AuthResponse is returned by the register and login endpoints
type AuthResponse struct {
	User         interface{} `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// RefreshRequest carries a refresh token to exchange for a new access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// DirectoryEntry is a doctor or patient as returned by the user directory,
// tagged with its participant kind
type DirectoryEntry struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
	UserType   string `json:"userType"` // "Doctor" or "Patient"

	Specialization string `json:"specialization,omitempty"`
	Spouse         string `json:"spouse,omitempty"`
}
