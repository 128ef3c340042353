package auth

import (
	"time"

	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/user"
)

type LoginResponse struct {
	User          user.UserResponseDto `json:"user"`
	Token         string               `json:"token"`
	Expire        time.Time            `json:"expire"`
	SystemTimeUTC time.Time            `json:"system_time_utc,omitempty"`
}
