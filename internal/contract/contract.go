// Package contract holds the pure helpers over model.Contract. Every helper
// takes a contract by value and returns an updated copy; none mutates its
// input or shares slices or maps with it.
package contract

import (
	"slices"
	"time"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// SeedAttributes are present in every contract's items.attributes.
var SeedAttributes = []model.ItemAttribute{
	{Key: "name", Label: "Name", Type: "text", Required: true},
	{Key: "code", Label: "Code", Type: "text", Required: true},
	{Key: "quantity", Label: "Quantity", Type: "number", Required: true},
}

// DefaultAudience is the analytics audience seeded into a new contract.
const DefaultAudience = "Operations Manager"

// New returns an empty contract for idempotencyKey, stamped with the
// current UTC time.
func New(idempotencyKey string) model.Contract {
	return NewAt(idempotencyKey, time.Now().UTC())
}

// NewAt is New with an explicit creation time.
func NewAt(idempotencyKey string, at time.Time) model.Contract {
	return model.Contract{
		Version: model.ContractVersion,
		Items: model.ItemsSection{
			Attributes: slices.Clone(SeedAttributes),
		},
		Analytics: model.AnalyticsSection{
			Audiences: []string{DefaultAudience},
		},
		Metadata: model.ContractMetadata{
			IdempotencyKey:  idempotencyKey,
			CreatedAt:       at,
			UpdatedAt:       at,
			CommittedFields: []string{},
		},
	}
}

// MarkComplete sets metadata.completedAt and updatedAt to at.
func MarkComplete(c model.Contract, at time.Time) model.Contract {
	c = clone(c)
	c.Metadata.CompletedAt = &at
	c.Metadata.UpdatedAt = at
	return c
}

// IsComplete reports whether completedAt is set.
func IsComplete(c model.Contract) bool {
	return c.Metadata.CompletedAt != nil
}

// CommitField records path as confirmed by the user. Committing an already
// committed path is a no-op.
func CommitField(c model.Contract, path string) model.Contract {
	return CommitFields(c, path)
}

// CommitFields commits every path in order, skipping duplicates.
func CommitFields(c model.Contract, paths ...string) model.Contract {
	c = clone(c)
	for _, p := range paths {
		if p == "" || slices.Contains(c.Metadata.CommittedFields, p) {
			continue
		}
		c.Metadata.CommittedFields = append(c.Metadata.CommittedFields, p)
	}
	return c
}

// IsFieldCommitted reports whether path is in the committed ledger.
func IsFieldCommitted(c model.Contract, path string) bool {
	return slices.Contains(c.Metadata.CommittedFields, path)
}

// ensureSeeds puts back any seed attribute missing from attrs, ahead of the
// custom attributes.
func ensureSeeds(attrs []model.ItemAttribute) []model.ItemAttribute {
	var missing []model.ItemAttribute
	for _, s := range SeedAttributes {
		found := slices.ContainsFunc(attrs, func(a model.ItemAttribute) bool { return a.Key == s.Key })
		if !found {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return attrs
	}
	return append(missing, attrs...)
}
