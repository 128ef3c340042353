package user

type ChangeTierRequestDto struct {
	Tier string `json:"tier" binding:"required"`
}

type ListUserRequestDto struct {
	Page     int `form:"page"`
	PageSize int `form:"size"`
}
