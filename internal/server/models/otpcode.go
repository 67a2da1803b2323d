package models

import "time"

// OTPPurpose names the flow a one-time code was issued for. A code issued for
// one purpose cannot be redeemed for another.
type OTPPurpose string

const (
	PurposeAccountVerification OTPPurpose = "account_verification"
	PurposePasswordReset       OTPPurpose = "password_reset"
	PurposePasswordUpdate      OTPPurpose = "password_update"
)

// OTPCode is the single outstanding one-time code per (credential, purpose).
// Redemption deletes the row, so a code can be used at most once.
type OTPCode struct {
	CredentialID string
	Purpose      OTPPurpose
	Code         string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
