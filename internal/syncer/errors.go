package syncer

import "errors"

// Per-record failures. None of them escapes Process; each is logged with the
// record ID and reflected in the returned outcome.
var (
	ErrUnrecognizedRecordType      = errors.New("record is not a Contact, Account or Lead")
	ErrAmbiguousLeadClassification = errors.New("lead is neither a Contact nor an Account")
	ErrMissingNaturalKey           = errors.New("natural key field missing")
	ErrLookupFailure               = errors.New("destination lookup failed")
	ErrWriteFailure                = errors.New("destination write failed")
)

// ErrorKind returns the stable identifier of a per-record failure.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnrecognizedRecordType):
		return "unrecognized_record_type"
	case errors.Is(err, ErrAmbiguousLeadClassification):
		return "ambiguous_lead_classification"
	case errors.Is(err, ErrMissingNaturalKey):
		return "missing_natural_key"
	case errors.Is(err, ErrLookupFailure):
		return "lookup_failure"
	case errors.Is(err, ErrWriteFailure):
		return "write_failure"
	default:
		return "internal"
	}
}
