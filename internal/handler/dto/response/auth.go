package response

import (
	"tablebook/internal/usecase/commands"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	UserID       uuid.UUID `json:"user_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Role         string    `json:"role"`
}

func FromLoginResult(result *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		AccessToken:  result.TokenPair.AccessToken,
		UserID:       result.UserID,
		RestaurantID: result.RestaurantID,
		Role:         result.Role,
	}
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
