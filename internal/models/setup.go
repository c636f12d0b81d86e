package models

type SetupRequest struct {
	Admin            CreateAccountRequest `json:"admin" binding:"required"`
	VerificationInfo VerificationInfo     `json:"verificationInfo" binding:"required"`
}

type SetupState struct {
	IsSetup bool `json:"isSetup"`
}
