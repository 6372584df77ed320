package dto

// RateRequest uses a pointer so that an explicit 0 is distinguishable from a
// missing field.
type RateRequest struct {
	Value *int `json:"value" validate:"required,rating-value"`
}

type RateResponse struct {
	Status string `json:"status"`
	Value  int    `json:"value"`
	Rating int    `json:"rating"`
}
