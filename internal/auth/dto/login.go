package dto

type LoginInput struct {
	Identifier    string `json:"identifier"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"token"`
	IPAddress     string `json:"-"`
	DeviceInfo    string `json:"-"`
	Location      string `json:"-"`
}

type LoginOutput struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"accessToken,omitempty"`
	Require2FA  bool   `json:"require2FA,omitempty"`
}
