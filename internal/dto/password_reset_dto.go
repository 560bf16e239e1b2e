package dto

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetUpdateRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}
