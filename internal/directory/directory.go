package directory

import (
	"context"
	"fmt"
	"strings"

	"crm/internal/domain"
)

type Store interface {
	// ListCustomerContacts returns customers with a phone on file. An empty
	// category means every customer.
	ListCustomerContacts(ctx context.Context, category string) ([]domain.Recipient, error)
}

// Directory resolves broadcast audiences from the customer table.
type Directory struct {
	Store Store
}

// ResolveAudience materializes the recipient list once, in storage order.
// Recipients without a usable destination are dropped.
func (d *Directory) ResolveAudience(ctx context.Context, sel domain.AudienceSelector) ([]domain.Recipient, error) {
	if sel.IsZero() {
		return nil, domain.ErrAudienceRequired
	}
	category := ""
	if !sel.All {
		category = sel.Category
	}

	rows, err := d.Store.ListCustomerContacts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAudienceResolution, err)
	}

	out := make([]domain.Recipient, 0, len(rows))
	for _, r := range rows {
		r.Destination = strings.TrimSpace(r.Destination)
		if r.Destination == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
