// Package processor implements the item processor of the customer import
// example. Each item carries one customer record; processing upserts it into
// the customers table keyed by email address.
package processor

import (
	"context"
	"fmt"
	"strings"

	model "github.com/tigerroll/reimport/pkg/imports/core/domain/model"
	"github.com/tigerroll/reimport/pkg/imports/core/execution"
	coreprocessor "github.com/tigerroll/reimport/pkg/imports/core/processor"
	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// Kind is the processor kind handled by CustomerProcessor.
const Kind = "customer_import"

const createCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    email VARCHAR(255) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    plan VARCHAR(64) NOT NULL DEFAULT 'free'
)`

// CustomerProcessor imports customer records. Records without a plausible
// email address or a name are skipped; records whose email already exists in
// the customers table are skipped as duplicates.
type CustomerProcessor struct {
	coreprocessor.BaseProcessor
}

// NewCustomerProcessor creates a CustomerProcessor.
func NewCustomerProcessor() *CustomerProcessor {
	return &CustomerProcessor{}
}

// OnBatchStart ensures the target table exists before any item is processed.
func (p *CustomerProcessor) OnBatchStart(ctx context.Context, ec *execution.Context) error {
	if _, err := ec.Exec(ctx, createCustomersTable); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}
	ec.Info(ctx, "Customer import started.", model.Payload{"kind": Kind})
	return nil
}

// ValidateItem rejects records without a usable email address or name.
func (p *CustomerProcessor) ValidateItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	email, _ := item.SourceData["email"].(string)
	name, _ := item.SourceData["name"].(string)
	if !strings.Contains(email, "@") {
		ec.Warning(ctx, fmt.Sprintf("Item %d has an invalid email address.", item.ItemIndex), model.Payload{"email": email})
		return false
	}
	return strings.TrimSpace(name) != ""
}

// ShouldSkip treats an already-known email address as a duplicate.
func (p *CustomerProcessor) ShouldSkip(ctx context.Context, ec *execution.Context, item *model.BatchItem) bool {
	email, _ := item.SourceData["email"].(string)

	var existing []struct {
		Email string
	}
	found, err := ec.QueryOne(ctx, &existing, "SELECT email FROM customers WHERE email = ?", email)
	if err != nil {
		logger.Warnf("Duplicate check for '%s' failed: %v", email, err)
		return false
	}
	return found
}

// ProcessItem upserts the customer record.
func (p *CustomerProcessor) ProcessItem(ctx context.Context, ec *execution.Context, item *model.BatchItem) (*model.ItemResult, error) {
	email, _ := item.SourceData["email"].(string)
	name, _ := item.SourceData["name"].(string)
	plan, _ := item.SourceData["plan"].(string)
	if plan == "" {
		plan = "free"
	}

	record := map[string]interface{}{
		"email": email,
		"name":  name,
		"plan":  plan,
	}
	if _, err := ec.Upsert(ctx, record, "customers", []string{"email"}, []string{"name", "plan"}); err != nil {
		return nil, fmt.Errorf("failed to upsert customer '%s': %w", email, err)
	}

	return &model.ItemResult{
		ProcessedData: model.Payload{"email": email, "name": name, "plan": plan},
		TargetTable:   "customers",
		TargetID:      email,
	}, nil
}

// OnBatchComplete records the outcome in the batch's durable log.
func (p *CustomerProcessor) OnBatchComplete(ctx context.Context, ec *execution.Context, success bool) error {
	if success {
		ec.Info(ctx, "Customer import finished.", nil)
	} else {
		ec.Error(ctx, "Customer import finished with failures.", nil)
	}
	return nil
}
