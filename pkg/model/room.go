package model

type Room struct {
	ID            string `json:"id,omitempty" bson:"_id,omitempty"`
	Number        string `json:"number" bson:"number"`
	Capacity      int    `json:"capacity" bson:"capacity"`
	PricePerNight int64  `json:"price_per_night" bson:"price_per_night"`
	Currency      string `json:"currency" bson:"currency"`
	LockID        string `json:"lock_id,omitempty" bson:"lock_id,omitempty"`
}
