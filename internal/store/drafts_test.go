package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/proposal-desk/internal/draft"
	"github.com/diewo77/proposal-desk/internal/models"
)

func newTestStore(t *testing.T) *DraftStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DraftRecord{}))
	return NewDraftStore(db)
}

func TestDraftLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	d := draft.New(draft.KindContract, now, draft.Defaults{ContractorName: "Sam Builder"})
	d, err := draft.Reduce(d, draft.LoadProposal{Proposal: models.Proposal{
		ID: 9, Name: "Deck", ClientName: "Jane Doe",
		Categories: []models.Category{{
			ID: 3, Name: "Flooring", Elements: []models.Element{{ID: 30, Name: "Oak Plank", MaterialCost: 120, LaborCost: 95}},
		}},
	}})
	require.NoError(t, err)

	id, err := s.Create(ctx, d)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.KindContract, got.Kind)
	assert.Equal(t, "Sam Builder", got.Fields.ContractorName)
	assert.Equal(t, d.Fields.StartDate, got.Fields.StartDate)
	assert.Equal(t, int64(9), got.TargetID)
	assert.Equal(t, 95.0, got.ResolvedCategories()[0].Elements[0].LaborCost)

	got, err = draft.Reduce(got, draft.SetField{Field: "contract_title", Value: "Deck rebuild"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, id, got))

	list, err := s.List(ctx, draft.KindContract)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Deck rebuild", list[0].Title)
	assert.Empty(t, list[0].Payload, "listing does not load payloads")

	other, err := s.List(ctx, draft.KindTemplate)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.Save(ctx, id, got), ErrNotFound)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Create(context.Background(), draft.Draft{Kind: "invoice"})
	assert.Error(t, err)
}

func TestGetFillsEmptyMaps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, draft.Draft{Kind: draft.KindTemplate})
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got.Variables)
	assert.NotNil(t, got.Costs)
	assert.NotNil(t, got.Values)
}

func TestSaveRejectsStaleDraft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.Create(ctx, draft.New(draft.KindProposal, time.Now(), draft.Defaults{}))
	require.NoError(t, err)

	first, err := s.Get(ctx, id)
	require.NoError(t, err)
	second, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	first, err = draft.Reduce(first, draft.SetField{Field: "name", Value: "Deck"})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, id, first))

	second, err = draft.Reduce(second, draft.SetField{Field: "client_name", Value: "Pat Lee"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Save(ctx, id, second), ErrConflict)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, "Deck", got.Fields.Name)
	assert.Empty(t, got.Fields.ClientName)
}
