package user

import (
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/access"
	"github.com/iantech-cloud/pro-career-suite-32-sub000/internal/iam/domain/model"
)

// --- Type Aliases ---
type User = model.User
type Tier = access.Tier

func IsValidTier(t Tier) bool {
	return t.Valid()
}
