package model

// Principal is the resolved identity attached to an authenticated request.
// It is a projection of a credential row and is never persisted.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
