package domain

import "time"

type Passenger struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Passport    string    `json:"passport"`
	BirthDate   time.Time `json:"birth_date"`
	Nationality string    `json:"nationality"`
	Gender      string    `json:"gender"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}
