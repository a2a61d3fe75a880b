package domain

import "time"

type SeatClass string

const (
	SeatClassFirst   SeatClass = "FIRST"
	SeatClassEconomy SeatClass = "ECONOMY"
)

type Aircraft struct {
	ID        int64     `json:"id"`
	Model     string    `json:"model"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Seat struct {
	ID         int64     `json:"id"`
	AircraftID int64     `json:"aircraft_id"`
	Number     string    `json:"number"`
	Row        int       `json:"row"`
	Column     string    `json:"column"`
	Class      SeatClass `json:"class"`
}
