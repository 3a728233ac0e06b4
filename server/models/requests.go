package models

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PropertyRequest covers create and update; zero values on update mean
// "leave unchanged" only where the handler says so.
type PropertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	Street      string  `json:"street"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	AreaSqm     float64 `json:"area_sqm"`
	Rooms       int     `json:"rooms"`
	YearBuilt   int     `json:"year_built"`
}

type AuctionCreateRequest struct {
	PropertyID    int64  `json:"property_id"`
	StartingPrice int64  `json:"starting_price"`
	MinIncrement  int64  `json:"min_increment"`
	StartTime     string `json:"start_time"`
	DurationHours int    `json:"duration_hours"`
	Private       bool   `json:"private"`
}

type BidRequest struct {
	Amount int64 `json:"amount"`
}

type InviteRequest struct {
	UserID int64 `json:"user_id"`
}

type PaymentRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type DocumentReviewRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type ThreadCreateRequest struct {
	Subject        string  `json:"subject"`
	PropertyID     int64   `json:"property_id"`
	ParticipantIDs []int64 `json:"participant_ids"`
}

type MessageRequest struct {
	Body string `json:"body"`
}
