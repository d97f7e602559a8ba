package domain

// CreateExpressAccountRequest запрос на создание Express connected-аккаунта
type CreateExpressAccountRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=255"`
	OwnerEmail  string `json:"owner_email" binding:"required,email"`
	Country     string `json:"country" binding:"omitempty,len=2"`
	UserID      string `json:"user_id" binding:"required,uuid4"`
	ClubSlug    string `json:"club_slug"`
}

// ConnectedAccount результат создания connected-аккаунта у процессора
type ConnectedAccount struct {
	AccountID        string `json:"account_id"`
	Country          string `json:"country,omitempty"`
	DefaultCurrency  string `json:"default_currency,omitempty"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}
