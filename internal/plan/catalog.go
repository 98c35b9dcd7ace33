package plan

import (
	"errors"
	"strings"
)

// Plan is a fixed purchasable credit bundle. Amounts are in minor units and
// are never recomputed after a transaction is created.
type Plan struct {
	ID       string
	Credits  int64
	Amount   int64
	Currency string
}

const (
	Basic    = "basic"
	Advanced = "advanced"
	Business = "business"
)

var ErrUnknownPlan = errors.New("invalid_plan")

var catalog = map[string]Plan{
	Basic:    {ID: Basic, Credits: 100, Amount: 1000, Currency: "USD"},
	Advanced: {ID: Advanced, Credits: 500, Amount: 5000, Currency: "USD"},
	Business: {ID: Business, Credits: 5000, Amount: 25000, Currency: "USD"},
}

// Lookup resolves a plan id from the closed catalog.
func Lookup(id string) (Plan, error) {
	p, ok := catalog[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// IDs returns the catalog plan ids.
func IDs() []string {
	return []string{Basic, Advanced, Business}
}
