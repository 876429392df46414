package models

// Role decides which dashboard a token can reach.
type Role string

const (
	RoleAdmin   Role = "admin"   // doctor / reception, records consultations
	RoleMedical Role = "medical" // medical store, reads prescriptions
)

// LoginInput is the body of the login gate.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"required,oneof=admin medical"`
}
