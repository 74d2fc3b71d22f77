package reviews

import "time"

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

type ReviewWithDetails struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	ProviderID   string    `json:"provider_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Reply        *string   `json:"reply,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProviderRatingSummary struct {
	ProviderID    string  `json:"provider_id"`
	ProviderName  string  `json:"provider_name"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	RatingCounts  struct {
		FiveStar  int `json:"five_star"`
		FourStar  int `json:"four_star"`
		ThreeStar int `json:"three_star"`
		TwoStar   int `json:"two_star"`
		OneStar   int `json:"one_star"`
	} `json:"rating_counts"`
}
