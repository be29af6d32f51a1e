package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

func TestCreateAndSearchRead(t *testing.T) {
	b := New()
	ctx := context.Background()

	id, err := b.Create(ctx, "res.partner", repositories.Record{"name": "Acme"}, 0)
	require.NoError(t, err)
	require.NotZero(t, id)

	found, err := b.SearchRead(ctx, "res.partner",
		[]repositories.Condition{repositories.Eq("name", "Acme")},
		repositories.SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID())

	missing, err := b.SearchRead(ctx, "res.partner",
		[]repositories.Condition{repositories.Eq("name", "Nobody")},
		repositories.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestWarehouseScaffolding(t *testing.T) {
	b := New()
	ctx := context.Background()

	whID, err := b.Create(ctx, "stock.warehouse", repositories.Record{
		"name": "Kigali Ville", "code": "KIGAL", "company_id": int64(1),
	}, 1)
	require.NoError(t, err)

	wh, err := b.SearchRead(ctx, "stock.warehouse",
		[]repositories.Condition{repositories.Eq("id", whID)},
		repositories.SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, wh, 1)
	assert.NotZero(t, wh[0].Relation("view_location_id"))
	assert.NotZero(t, wh[0].Relation("lot_stock_id"))

	for _, code := range []string{"incoming", "internal", "outgoing"} {
		pt, err := b.SearchRead(ctx, "stock.picking.type",
			[]repositories.Condition{
				repositories.Eq("warehouse_id", whID),
				repositories.Eq("code", code),
			},
			repositories.SearchOptions{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, pt, 1, code)
	}
}

func TestProductVariantScaffolding(t *testing.T) {
	b := New()
	ctx := context.Background()

	_, err := b.Create(ctx, "product.template", repositories.Record{
		"name": "Hybrid Maize Seed 5kg", "default_code": "SEEDS-001",
	}, 0)
	require.NoError(t, err)

	variants, err := b.SearchRead(ctx, "product.product",
		[]repositories.Condition{repositories.Eq("default_code", "SEEDS-001")},
		repositories.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, variants, 1)
}

func TestInvokeStateMachine(t *testing.T) {
	b := New()
	ctx := context.Background()

	id, err := b.Create(ctx, "stock.picking", repositories.Record{"origin": "X"}, 0)
	require.NoError(t, err)

	for _, step := range []struct{ method, state string }{
		{"action_confirm", "confirmed"},
		{"action_assign", "assigned"},
		{"button_validate", "done"},
	} {
		_, err := b.Invoke(ctx, "stock.picking", step.method, []int64{id}, nil, 0)
		require.NoError(t, err)

		rec, err := b.SearchRead(ctx, "stock.picking",
			[]repositories.Condition{repositories.Eq("id", id)},
			repositories.SearchOptions{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, step.state, rec[0].Str("state"))
	}
}

func TestCreateHookInjectsFailures(t *testing.T) {
	b := New()
	boom := errors.New("backend unavailable")
	b.CreateHook = func(model string, values repositories.Record) error {
		if model == "stock.picking" {
			return boom
		}
		return nil
	}

	_, err := b.Create(context.Background(), "stock.picking", repositories.Record{}, 0)
	assert.ErrorIs(t, err, boom)

	_, err = b.Create(context.Background(), "res.partner", repositories.Record{"name": "ok"}, 0)
	assert.NoError(t, err)
}

func TestWriteUpdatesMatchingRecords(t *testing.T) {
	b := New()
	ctx := context.Background()

	id, err := b.Create(ctx, "stock.picking", repositories.Record{"origin": "A"}, 0)
	require.NoError(t, err)

	require.NoError(t, b.Write(ctx, "stock.picking", []int64{id},
		repositories.Record{"date_done": "2025-06-01 16:30:00"}, 0))

	rec, err := b.SearchRead(ctx, "stock.picking",
		[]repositories.Condition{repositories.Eq("id", id)},
		repositories.SearchOptions{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 16:30:00", rec[0].Str("date_done"))
}

func TestLooseNumericEquality(t *testing.T) {
	b := New()
	b.Seed("res.users", repositories.Record{"id": int64(7), "login": "seed"})

	found, err := b.SearchRead(context.Background(), "res.users",
		[]repositories.Condition{repositories.Eq("id", 7)},
		repositories.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestCallCounters(t *testing.T) {
	b := New()
	ctx := context.Background()

	require.NoError(t, b.Authenticate(ctx))
	_, err := b.Create(ctx, "res.partner", repositories.Record{"name": "X"}, 0)
	require.NoError(t, err)
	_, err = b.SearchRead(ctx, "res.partner", nil, repositories.SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, b.Calls("authenticate"))
	assert.Equal(t, 1, b.Calls("create"))
	assert.Equal(t, 1, b.Calls("search_read"))
	assert.Equal(t, 0, b.Calls("invoke"))
}
