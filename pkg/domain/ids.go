// Package domain holds identifier value types shared across bounded contexts.
//
// Identifiers are parsed once at trust boundaries (HTTP headers, Kafka payloads,
// registry responses) and passed around as typed values afterwards.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "isdialogmelding/pkg/domain-errors"
)

const personidentLength = 11

// Personident is a Norwegian national identity number (fnr/dnr): exactly 11 digits.
type Personident string

// ParsePersonident validates an 11-digit identity number.
func ParsePersonident(s string) (Personident, error) {
	s = strings.TrimSpace(s)
	if len(s) != personidentLength || !allDigits(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "personident must be 11 digits")
	}
	return Personident(s), nil
}

func (p Personident) String() string { return string(p) }

func (p Personident) IsNil() bool { return p == "" }

// PartnerID identifies a kontor in the message routing registry.
type PartnerID int

// ParsePartnerID accepts a positive integer.
func ParsePartnerID(s string) (PartnerID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "partnerId must be a positive integer")
	}
	return PartnerID(n), nil
}

func (p PartnerID) String() string { return strconv.Itoa(int(p)) }

func (p PartnerID) IsNil() bool { return p <= 0 }

// HerID is an id in the health register of communication parties (Adresseregisteret).
type HerID string

// ParseHerID accepts a non-empty numeric id.
func ParseHerID(s string) (HerID, error) {
	s = strings.TrimSpace(s)
	if s == "" || !allDigits(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "herId must be numeric")
	}
	return HerID(s), nil
}

func (h HerID) String() string { return string(h) }

func (h HerID) IsNil() bool { return h == "" }

// HprID is an id in the health personnel register.
type HprID string

// ParseHprID accepts a non-empty numeric id.
func ParseHprID(s string) (HprID, error) {
	s = strings.TrimSpace(s)
	if s == "" || !allDigits(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "hprId must be numeric")
	}
	return HprID(s), nil
}

func (h HprID) String() string { return string(h) }

func (h HprID) IsNil() bool { return h == "" }

// BehandlerRef is the public, stable reference to a stored behandler.
type BehandlerRef uuid.UUID

// ParseBehandlerRef parses a non-nil UUID.
func ParseBehandlerRef(s string) (BehandlerRef, error) {
	u, err := parseUUID(s, "behandlerRef")
	return BehandlerRef(u), err
}

func (r BehandlerRef) String() string { return uuid.UUID(r).String() }

func (r BehandlerRef) IsNil() bool { return uuid.UUID(r) == uuid.Nil }

// MessageID identifies a dialog message (bestilling) or a receipt (apprec).
type MessageID uuid.UUID

// ParseMessageID parses a non-nil UUID.
func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID(s, "message id")
	return MessageID(u), err
}

func (m MessageID) String() string { return uuid.UUID(m).String() }

func (m MessageID) IsNil() bool { return uuid.UUID(m) == uuid.Nil }

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
