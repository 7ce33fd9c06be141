package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PratikDhanave/crm-sync-service/internal/hubspot"
	"github.com/PratikDhanave/crm-sync-service/internal/mapping"
	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

// target identifies the HubSpot object a record is written to.
type target struct {
	class    string
	keyProp  string
	keyValue string
	kind     string
}

func (s *Syncer) syncContact(ctx context.Context, rec models.Record, kind string, table mapping.Table, out *models.SyncOutcome) {
	email, ok := rec.String(models.FieldEmail)
	if !ok {
		s.skip(out, fmt.Errorf("%w: %s", ErrMissingNaturalKey, models.FieldEmail))
		return
	}
	s.upsert(ctx, rec, target{
		class:    hubspot.ClassContacts,
		keyProp:  "email",
		keyValue: email,
		kind:     kind,
	}, table, out)
}

func (s *Syncer) syncAccount(ctx context.Context, rec models.Record, kind string, table mapping.Table, out *models.SyncOutcome) {
	website, ok := rec.String(models.FieldWebsite)
	if !ok {
		s.skip(out, fmt.Errorf("%w: %s", ErrMissingNaturalKey, models.FieldWebsite))
		return
	}
	s.upsert(ctx, rec, target{
		class:    hubspot.ClassCompanies,
		keyProp:  "domain",
		keyValue: s.cfg.Normalizer.Normalize(website),
		kind:     kind,
	}, table, out)
}

// syncLead reads the discriminator field named in the config and syncs the
// lead as a contact or an account using the lead mapping tables.
func (s *Syncer) syncLead(ctx context.Context, rec models.Record, out *models.SyncOutcome) {
	value, _ := rec.String(s.cfg.LeadDiscriminatorField)

	switch models.RecordType(value) {
	case models.RecordTypeContact:
		s.syncContact(ctx, rec, mapping.KindContact, s.cfg.Mappings.LeadAsContact, out)
	case models.RecordTypeAccount:
		s.syncAccount(ctx, rec, mapping.KindAccount, s.cfg.Mappings.LeadAsAccount, out)
	default:
		s.skip(out, ErrAmbiguousLeadClassification,
			zap.String("discriminator_field", s.cfg.LeadDiscriminatorField),
			zap.String("discriminator_value", value))
	}
}

// upsert reconciles the ledger, builds the property bag and writes it. An
// existing object found by the lookup is updated; otherwise one is created.
func (s *Syncer) upsert(ctx context.Context, rec models.Record, t target, table mapping.Table, out *models.SyncOutcome) {
	out.ObjectClass = t.class
	ledgerProp := s.cfg.Mappings.LedgerProperty(t.kind)

	recon := s.Reconcile(ctx, t.class, t.keyProp, t.keyValue, ledgerProp, rec.ID())
	out.LookupFailed = recon.LookupErr != nil
	out.ExternalIDs = recon.ExternalIDs

	props := models.Properties{t.keyProp: t.keyValue}
	if ledgerProp != "" {
		props[ledgerProp] = recon.ExternalIDs
	}
	table.Apply(rec, props)

	var (
		obj *hubspot.Object
		err error
		op  = "create"
	)
	if recon.ObjectID != "" {
		op = "update"
		obj, err = s.dest.Update(ctx, t.class, recon.ObjectID, props)
	} else {
		obj, err = s.dest.Create(ctx, t.class, props)
	}

	log := s.logger.With(
		zap.String("record_id", out.SourceID),
		zap.String("source_kind", t.kind),
		zap.String("object_class", t.class),
		zap.String("operation", op),
	)
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %w", ErrWriteFailure, op, t.class, err)
		out.Status = models.StatusFailed
		out.ErrorKind = ErrorKind(err)
		out.Error = err.Error()
		log.Error("hubspot upsert failed", zap.Error(err))
		return
	}

	out.Status = models.StatusSynced
	out.ObjectID = recon.ObjectID
	if obj != nil && obj.ID != "" {
		out.ObjectID = obj.ID
	}
	log.Info("hubspot object upserted", zap.String("object_id", out.ObjectID))
}
