package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/domain"
)

type fakeStore struct {
	rows      []domain.Recipient
	err       error
	gotFilter []string
}

func (f *fakeStore) ListCustomerContacts(ctx context.Context, category string) ([]domain.Recipient, error) {
	f.gotFilter = append(f.gotFilter, category)
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Recipient
	for _, r := range f.rows {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestResolveAudienceByCategoryDropsEmptyDestinations(t *testing.T) {
	store := &fakeStore{rows: []domain.Recipient{
		{Destination: "9000000001", Category: "student"},
		{Destination: "9000000002", Category: "student"},
		{Destination: "", Category: "student"},
		{Destination: "9000000003", Category: "student"},
		{Destination: "9000000004", Category: "business"},
	}}
	d := &Directory{Store: store}

	got, err := d.ResolveAudience(context.Background(), domain.AudienceCategory("student"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "9000000001", got[0].Destination)
	assert.Equal(t, "9000000003", got[2].Destination)
	assert.Equal(t, []string{"student"}, store.gotFilter)
}

func TestResolveAudienceAll(t *testing.T) {
	store := &fakeStore{rows: []domain.Recipient{
		{Destination: "9000000001", Category: "student"},
		{Destination: "   ", Category: "student"},
		{Destination: "9000000004", Category: "business"},
	}}
	d := &Directory{Store: store}

	got, err := d.ResolveAudience(context.Background(), domain.AudienceAll())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{""}, store.gotFilter)
}

func TestResolveAudienceStoreFailure(t *testing.T) {
	d := &Directory{Store: &fakeStore{err: errors.New("connection refused")}}

	_, err := d.ResolveAudience(context.Background(), domain.AudienceAll())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAudienceResolution)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResolveAudienceEmptySelector(t *testing.T) {
	d := &Directory{Store: &fakeStore{}}
	_, err := d.ResolveAudience(context.Background(), domain.AudienceSelector{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
