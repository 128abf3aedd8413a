// Package benner models the internal receivable/payable documents
// ("Benner" records) reconciled against bank-statement lines.
package benner

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a document with respect to reconciliation.
type Status string

const (
	StatusPending    Status = "Pendente"
	StatusReconciled Status = "Conciliado"
)

// DowngradePolicy decides what happens when a re-imported document would
// regress a Reconciled status back to Pending (e.g. a corrected file that
// lacks the settlement date).
type DowngradePolicy string

const (
	// DowngradePreserve keeps a previously earned Reconciled status.
	DowngradePreserve DowngradePolicy = "preserve"
	// DowngradeHonorIncoming trusts the new file unconditionally.
	DowngradeHonorIncoming DowngradePolicy = "honor_incoming"
)

// Document is an internal receivable/payable record. Amount is the
// unsigned settlement/total value.
type Document struct {
	ID                 string
	Name               string
	TaxID              string
	DocType            string
	DueDate            time.Time
	SettlementDate     *time.Time
	Amount             decimal.Decimal
	Status             Status
	CleanedDescription string
}

// DeriveStatus sets Status from the settlement date: a document that
// already carries one arrives reconciled.
func (d *Document) DeriveStatus() {
	if d.SettlementDate != nil {
		d.Status = StatusReconciled
	} else {
		d.Status = StatusPending
	}
}

// Reconcile flips the document to Reconciled, settling it at the given
// time when the source data carried no settlement date of its own.
func (d *Document) Reconcile(at time.Time) {
	d.Status = StatusReconciled
	if d.SettlementDate == nil {
		t := at
		d.SettlementDate = &t
	}
}

// ResolveUpsert merges an incoming version of a document over the prior
// one. Field values come from the incoming record; the status transition
// is governed by the policy. Returns the record to store.
func ResolveUpsert(prior *Document, incoming *Document, policy DowngradePolicy) *Document {
	merged := *incoming
	if prior == nil {
		return &merged
	}
	if policy == DowngradePreserve &&
		prior.Status == StatusReconciled && merged.Status == StatusPending {
		merged.Status = StatusReconciled
		if merged.SettlementDate == nil {
			merged.SettlementDate = prior.SettlementDate
		}
	}
	return &merged
}
