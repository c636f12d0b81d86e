package models

import "time"

// ConfirmEmailInfo is the pending email confirmation challenge embedded in a
// user record. A nil value means no code has been requested or the last one
// was consumed.
type ConfirmEmailInfo struct {
	AttemptsMade int       `json:"attemptsMade"`
	Code         int       `json:"-"`
	Expiry       time.Time `json:"expiry"`
}

// Active reports whether the code can still be reused for a resend.
func (c *ConfirmEmailInfo) Active(now time.Time) bool {
	return c != nil && c.Expiry.After(now)
}

// Expired reports whether now is past the expiry.
func (c *ConfirmEmailInfo) Expired(now time.Time) bool {
	return now.After(c.Expiry)
}

// ConfirmEmailProcedureInfo is what the caller learns about an issued code.
type ConfirmEmailProcedureInfo struct {
	AttemptsMade int       `json:"attemptsMade"`
	Expiry       time.Time `json:"expiry"`
}
