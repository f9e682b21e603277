package dto

import "time"

type UserOutput struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ProfileOutput struct {
	UserOutput
	StoreInformation *StoreInformationOutput `json:"storeInformation,omitempty"`
}

type StoreInformationOutput struct {
	ID           string `json:"id"`
	StoreName    string `json:"storeName"`
	StorePhone   string `json:"storePhone"`
	StoreAddress string `json:"storeAddress"`
}

type SetActiveInput struct {
	IsActive bool `json:"isActive"`
}
