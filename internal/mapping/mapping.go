// Package mapping holds the declarative field mappings used to translate
// Salesforce records into HubSpot properties.
package mapping

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PratikDhanave/crm-sync-service/internal/models"
)

// Source object kinds. They select the ledger property a record's ID is
// accumulated in.
const (
	KindContact = "contact"
	KindAccount = "account"
	KindLead    = "lead"
)

// Table maps a source field name to a destination property name.
type Table map[string]string

// Apply copies every field of rec that appears on the source side of t into
// props under its destination name. Fields missing from rec are skipped.
// Sources are visited in sorted order so that two sources sharing a
// destination resolve the same way on every call.
func (t Table) Apply(rec models.Record, props models.Properties) {
	sources := make([]string, 0, len(t))
	for src := range t {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		if v, ok := rec[src]; ok {
			props[t[src]] = v
		}
	}
}

func (t Table) validate(name string) error {
	for src, dst := range t {
		if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
			return fmt.Errorf("mapping %s: empty field name in %q -> %q", name, src, dst)
		}
	}
	return nil
}

// Set is the full mapping configuration of the service.
type Set struct {
	Contact       Table `yaml:"contact"`
	Account       Table `yaml:"account"`
	LeadAsContact Table `yaml:"lead_as_contact"`
	LeadAsAccount Table `yaml:"lead_as_account"`

	// LedgerProperties maps a source kind to the HubSpot property holding
	// the semicolon-joined Salesforce IDs.
	LedgerProperties map[string]string `yaml:"ledger_properties"`
}

// Defaults returns the built-in mappings.
func Defaults() Set {
	return Set{
		Contact: Table{
			"First Name": "firstname",
			"Last Name":  "lastname",
			"Email":      "email",
			"Phone":      "phone",
		},
		Account: Table{
			"Name":           "name",
			"Phone":          "phone",
			"Annual Revenue": "annualrevenue",
		},
		LeadAsContact: Table{
			"FirstName": "firstname",
			"LastName":  "lastname",
			"Company":   "company",
			"Phone":     "phone",
		},
		LeadAsAccount: Table{
			"AccountName": "name",
			"Website":     "website",
			"industry_c":  "industry",
		},
		LedgerProperties: map[string]string{
			KindContact: "sfdc_contact_id",
			KindLead:    "sfdc_company_id",
			KindAccount: "sfdc_account_id",
		},
	}
}

// LedgerProperty returns the ledger property for a source kind.
func (s Set) LedgerProperty(kind string) string {
	return s.LedgerProperties[kind]
}

// Validate checks that every table is well formed and that contacts and
// accounts have a ledger property.
func (s Set) Validate() error {
	tables := map[string]Table{
		"contact":         s.Contact,
		"account":         s.Account,
		"lead_as_contact": s.LeadAsContact,
		"lead_as_account": s.LeadAsAccount,
	}
	for name, t := range tables {
		if err := t.validate(name); err != nil {
			return err
		}
	}
	for _, kind := range []string{KindContact, KindAccount} {
		if strings.TrimSpace(s.LedgerProperties[kind]) == "" {
			return fmt.Errorf("mapping: ledger property for %q required", kind)
		}
	}
	return nil
}

// LoadFile reads a YAML mapping file. Sections present in the file replace the
// corresponding default; omitted sections keep their defaults.
func LoadFile(path string) (Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read mappings file: %w", err)
	}

	var file Set
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Set{}, fmt.Errorf("parse mappings file %s: %w", path, err)
	}

	set := Defaults()
	if file.Contact != nil {
		set.Contact = file.Contact
	}
	if file.Account != nil {
		set.Account = file.Account
	}
	if file.LeadAsContact != nil {
		set.LeadAsContact = file.LeadAsContact
	}
	if file.LeadAsAccount != nil {
		set.LeadAsAccount = file.LeadAsAccount
	}
	for kind, prop := range file.LedgerProperties {
		set.LedgerProperties[kind] = prop
	}

	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Load returns the defaults when path is empty and the file contents otherwise.
func Load(path string) (Set, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	return LoadFile(path)
}
