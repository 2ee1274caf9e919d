package config

import (
	"fmt"
	"strings"
)

type Store struct {
	Reconcile Reconcile `env:"STORE_RECONCILE" envDefault:"MERGE"`
}

// Reconcile selects how a resource store updates its list after a mutation.
type Reconcile uint8

const (
	// ReconcileMerge merges the entity returned by the API into the list.
	ReconcileMerge Reconcile = iota
	// ReconcileRefetch reloads the full collection after every mutation.
	ReconcileRefetch
)

var reconcileNames = []string{"MERGE", "REFETCH"}

// String returns the string representation of the strategy.
func (r Reconcile) String() string {
	if int(r) >= len(reconcileNames) {
		return "UNKNOWN"
	}
	return reconcileNames[r]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *Reconcile) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "MERGE":
		*r = ReconcileMerge
	case "REFETCH":
		*r = ReconcileRefetch
	default:
		return fmt.Errorf("unknown reconcile strategy: %s", text)
	}
	return nil
}

func (r Reconcile) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
