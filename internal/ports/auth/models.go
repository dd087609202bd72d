package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   string

	ExpiresAt time.Time
}

// User es la vista del usuario que guarda la sesión.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Session es lo que devuelve el backend de auth al hacer sign-in / sign-up / refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt del access token. El refresh token vive más.
	ExpiresAt time.Time
	User      User
}

// SignUpInput: displayName y metadata viajan como opciones de la cuenta.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
	Metadata    map[string]any
}

// SignUpResult: Session es nil cuando el backend exige verificar el email.
type SignUpResult struct {
	NeedsEmailVerification bool
	Session                *Session
}
