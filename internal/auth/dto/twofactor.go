package dto

type TwoFactorSetupOutput struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioningUri"`
	IsEnabled       bool   `json:"isEnabled"`
}

type TwoFactorVerifyInput struct {
	Code string `json:"token"`
}

type TwoFactorVerifyOutput struct {
	BackupCodes []string `json:"backupCodes"`
}

type TwoFactorDisableInput struct {
	Password string `json:"password"`
}

type TwoFactorStatusOutput struct {
	IsEnabled bool `json:"isEnabled"`
}
