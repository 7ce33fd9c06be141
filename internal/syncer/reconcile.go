package syncer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// LedgerSeparator joins the Salesforce IDs accumulated on a HubSpot object.
const LedgerSeparator = ";"

// AppendExternalID appends newID to a ledger value. IDs are never removed or
// deduplicated.
func AppendExternalID(ledger, newID string) string {
	switch {
	case strings.TrimSpace(ledger) == "":
		return newID
	case newID == "":
		return ledger
	default:
		return ledger + LedgerSeparator + newID
	}
}

// Reconciliation is the result of looking up a record by its natural key.
type Reconciliation struct {
	// ExternalIDs is the ledger value to write.
	ExternalIDs string
	// ObjectID is the ID of the matched HubSpot object, if any.
	ObjectID string
	// LookupErr is set when the search failed and the ledger fell back to newID.
	LookupErr error
}

// Reconcile searches class for an object whose keyProp equals keyValue and
// appends newID to its ledgerProp value. A failed search is logged and
// treated as no match.
func (s *Syncer) Reconcile(ctx context.Context, class, keyProp, keyValue, ledgerProp, newID string) Reconciliation {
	var returnProps []string
	if ledgerProp != "" {
		returnProps = []string{ledgerProp}
	}

	results, err := s.dest.Search(ctx, class, keyProp, keyValue, returnProps...)
	if err != nil {
		err = fmt.Errorf("%w: %s by %s: %w", ErrLookupFailure, class, keyProp, err)
		s.logger.Error("failed to fetch existing object",
			zap.String("record_id", newID),
			zap.String("object_class", class),
			zap.Error(err))
		return Reconciliation{ExternalIDs: newID, LookupErr: err}
	}
	if len(results) == 0 {
		return Reconciliation{ExternalIDs: newID}
	}

	match := results[0]
	existing := ""
	if ledgerProp != "" {
		existing = match.Property(ledgerProp)
	}
	return Reconciliation{
		ExternalIDs: AppendExternalID(existing, newID),
		ObjectID:    match.ID,
	}
}
