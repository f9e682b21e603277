package dto

type RegisterInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	StoreName    string `json:"storeName"`
	StorePhone   string `json:"storePhone"`
	StoreAddress string `json:"storeAddress"`
	IPAddress    string `json:"-"`
	DeviceInfo   string `json:"-"`
	Location     string `json:"-"`
}
