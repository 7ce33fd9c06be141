// Package syncer routes Salesforce triggers to the HubSpot contact and
// company handlers.
package syncer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PratikDhanave/crm-sync-service/internal/domain"
	"github.com/PratikDhanave/crm-sync-service/internal/hubspot"
	"github.com/PratikDhanave/crm-sync-service/internal/mapping"
	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

// DefaultLeadDiscriminatorField names the lead field saying whether the lead
// becomes a Contact or an Account.
const DefaultLeadDiscriminatorField = "contact_or_account"

// Destination is the subset of the HubSpot API the sync needs.
type Destination interface {
	Search(ctx context.Context, class, property, value string, returnProps ...string) ([]hubspot.Object, error)
	Create(ctx context.Context, class string, props map[string]any) (*hubspot.Object, error)
	Update(ctx context.Context, class, id string, props map[string]any) (*hubspot.Object, error)
}

// Recorder receives every outcome after processing.
type Recorder interface {
	Record(ctx context.Context, out models.SyncOutcome) error
}

// Config holds the static rules of the sync.
type Config struct {
	Mappings               mapping.Set
	LeadDiscriminatorField string
	Normalizer             *domain.Normalizer
}

// Syncer processes one record per call. It keeps no state between calls.
type Syncer struct {
	dest      Destination
	cfg       Config
	logger    *zap.Logger
	recorders []Recorder
	now       func() time.Time
}

// New creates a Syncer. Zero-valued fields of cfg fall back to defaults.
func New(dest Destination, cfg Config, logger *zap.Logger, recorders ...Recorder) *Syncer {
	if cfg.Mappings.LedgerProperties == nil {
		cfg.Mappings = mapping.Defaults()
	}
	if strings.TrimSpace(cfg.LeadDiscriminatorField) == "" {
		cfg.LeadDiscriminatorField = DefaultLeadDiscriminatorField
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = domain.NewNormalizer(domain.DefaultCompoundSuffixes, false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		dest:      dest,
		cfg:       cfg,
		logger:    logger,
		recorders: recorders,
		now:       time.Now,
	}
}

type sourceCtxKey struct{}

// WithSource tags ctx with the authenticated trigger source.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceCtxKey{}, source)
}

// SourceFromContext returns the source set by WithSource.
func SourceFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sourceCtxKey{}).(string)
	return s
}

// Process routes rec by its type and syncs it to HubSpot. Failures are logged
// and reported in the outcome; Process never fails.
func (s *Syncer) Process(ctx context.Context, rec models.Record) models.SyncOutcome {
	out := models.SyncOutcome{
		ID:         uuid.NewString(),
		Source:     SourceFromContext(ctx),
		SourceID:   rec.ID(),
		RecordType: string(rec.Type()),
	}

	switch rec.Type() {
	case models.RecordTypeContact:
		s.syncContact(ctx, rec, mapping.KindContact, s.cfg.Mappings.Contact, &out)
	case models.RecordTypeAccount:
		s.syncAccount(ctx, rec, mapping.KindAccount, s.cfg.Mappings.Account, &out)
	case models.RecordTypeLead:
		s.syncLead(ctx, rec, &out)
	default:
		s.skip(&out, ErrUnrecognizedRecordType, zap.String("record_type", string(rec.Type())))
	}

	out.ProcessedAt = s.now().UTC()
	s.record(ctx, out)
	return out
}

func (s *Syncer) record(ctx context.Context, out models.SyncOutcome) {
	for _, r := range s.recorders {
		if err := r.Record(ctx, out); err != nil {
			s.logger.Warn("failed to record sync outcome",
				zap.String("outcome_id", out.ID),
				zap.String("record_id", out.SourceID),
				zap.Error(err))
		}
	}
}

// skip marks a record that was rejected before any write was attempted.
func (s *Syncer) skip(out *models.SyncOutcome, err error, fields ...zap.Field) {
	out.Status = models.StatusSkipped
	out.ErrorKind = ErrorKind(err)
	out.Error = err.Error()
	s.logger.Error("record not synced",
		append([]zap.Field{zap.String("record_id", out.SourceID), zap.Error(err)}, fields...)...)
}
