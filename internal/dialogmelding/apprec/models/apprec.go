// Package models holds application receipts (apprec) for sent dialogmeldinger.
package models

import (
	"time"

	id "isdialogmelding/pkg/domain"
)

// Status codes from the KITH apprec code set 7309.
const (
	StatusOK     = "1"
	StatusAvvist = "2"
)

// ErrorUkjentMottaker is code E21 "Mottaker finnes ikke" from code set 8221.
const ErrorUkjentMottaker = "E21"

// Apprec acknowledges (or rejects) one bestilling.
type Apprec struct {
	UUID           id.MessageID
	BestillingUUID id.MessageID
	StatusKode     string
	StatusTekst    string
	FeilKode       string
	FeilTekst      string
}

// IsUnknownRecipient reports whether the receiver was rejected as not existing,
// which makes the addressed behandler unreachable.
func (a Apprec) IsUnknownRecipient() bool {
	return a.StatusKode == StatusAvvist && a.FeilKode == ErrorUkjentMottaker
}

// StoredApprec is a persisted apprec joined to its bestilling row.
type StoredApprec struct {
	ID           int64
	BestillingID int64
	CreatedAt    time.Time
	Apprec
}

// Outcome is the terminal state of processing one apprec message.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeApplied   Outcome = "applied"
)
