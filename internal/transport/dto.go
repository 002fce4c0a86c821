package transport

import "github.com/Skotchmaster/sport_academy/internal/models"

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type UpdateClassRequest struct {
	ClassName    *string  `json:"className"`
	AvailableSet *int     `json:"availableSet"`
	Price        *float64 `json:"price"`
	ClassPhoto   *string  `json:"classPhoto"`
}

func (r UpdateClassRequest) ToModel() models.ClassUpdate {
	return models.ClassUpdate{
		ClassName:    r.ClassName,
		AvailableSet: r.AvailableSet,
		Price:        r.Price,
		ClassPhoto:   r.ClassPhoto,
	}
}

type SearchResponse struct {
	Total   int64          `json:"total"`
	Classes []models.Class `json:"classes"`
}
