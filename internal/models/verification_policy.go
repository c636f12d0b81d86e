package models

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	PolicyVerifyOnConfirm = "VERIFICATION_UPON_CONFIRM_EMAIL"
	PolicyVerifyByRegex   = "VERIFICATION_WITH_REGEX"
	PolicyManual          = "MANUAL_VERIFICATION"
)

var ErrInvalidPolicy = errors.New("invalid verification policy")

// VerificationPolicy decides whether confirming an email also verifies the
// account. The implementations below are the only ones.
type VerificationPolicy interface {
	Kind() string
	verificationPolicy()
}

type VerifyOnConfirm struct{}

type VerifyByRegex struct {
	Pattern *regexp.Regexp
}

type ManualVerification struct{}

func (VerifyOnConfirm) Kind() string    { return PolicyVerifyOnConfirm }
func (VerifyByRegex) Kind() string      { return PolicyVerifyByRegex }
func (ManualVerification) Kind() string { return PolicyManual }

func (VerifyOnConfirm) verificationPolicy()    {}
func (VerifyByRegex) verificationPolicy()      {}
func (ManualVerification) verificationPolicy() {}

// ShouldVerify reports whether a user with the given email, having just
// confirmed it, is verified under p.
func ShouldVerify(p VerificationPolicy, email string) bool {
	switch p := p.(type) {
	case VerifyOnConfirm:
		return true
	case VerifyByRegex:
		return p.Pattern != nil && p.Pattern.MatchString(email)
	case ManualVerification:
		return false
	default:
		panic(fmt.Sprintf("unhandled verification policy %T", p))
	}
}

// VerificationInfo is the stored and wire form of a policy.
type VerificationInfo struct {
	Kind  string `json:"kind" yaml:"kind" binding:"required"`
	Regex string `json:"regex,omitempty" yaml:"regex,omitempty"`
}

func (i VerificationInfo) Policy() (VerificationPolicy, error) {
	return ParseVerificationPolicy(i.Kind, i.Regex)
}

func InfoOf(p VerificationPolicy) VerificationInfo {
	info := VerificationInfo{Kind: p.Kind()}
	if r, ok := p.(VerifyByRegex); ok && r.Pattern != nil {
		info.Regex = r.Pattern.String()
	}
	return info
}

func ParseVerificationPolicy(kind, regex string) (VerificationPolicy, error) {
	switch kind {
	case PolicyVerifyOnConfirm:
		return VerifyOnConfirm{}, nil
	case PolicyManual:
		return ManualVerification{}, nil
	case PolicyVerifyByRegex:
		if regex == "" {
			return nil, fmt.Errorf("%w: regex is required for %s", ErrInvalidPolicy, kind)
		}
		re, err := regexp.Compile(regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
		return VerifyByRegex{Pattern: re}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPolicy, kind)
	}
}
