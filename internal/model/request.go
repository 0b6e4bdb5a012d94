package model

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type OAuthStart struct {
	Provider     string `json:"provider"`
	AuthorizeURL string `json:"authorize_url"`
	State        string `json:"state"`
	ExpiresIn    int64  `json:"expires_in"`
}

type OAuthState struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
}
