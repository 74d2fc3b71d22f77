package user

import "time"

type CustomerProfile struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website"`
	Industry    string    `json:"industry"`
	About       string    `json:"about"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProviderProfile struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Headline   string    `json:"headline"`
	Skills     string    `json:"skills"`
	HourlyRate int64     `json:"hourly_rate"`
	About      string    `json:"about"`
	KycStatus  string    `json:"kyc_status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Certification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Issuer    string    `json:"issuer,omitempty"`
	Year      int       `json:"year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PortfolioItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
