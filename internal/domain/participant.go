package domain

import (
	"github.com/shopspring/decimal"
)

type ParticipantStatus string

const (
	ParticipantStatusActive  ParticipantStatus = "active"
	ParticipantStatusBlocked ParticipantStatus = "blocked"
)

type ParticipantKind string

const (
	ParticipantKindAgent    ParticipantKind = "agent"
	ParticipantKindInvestor ParticipantKind = "investor"
)

// Participant is the account-level view of an agent or investor: the
// rollup the dashboard shows above the monthly ledger.
type Participant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Kind      ParticipantKind   `json:"kind"`
	TotalDue  decimal.Decimal   `json:"totalDue"`
	TotalPaid decimal.Decimal   `json:"totalPaid"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    ParticipantStatus `json:"status"`
}

// Clone copies the participant for rollback snapshots.
func (p *Participant) Clone() *Participant {
	c := *p
	return &c
}
