package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/blocksched/internal/domain"
	"github.com/alexanderramin/blocksched/internal/testutil"
)

func TestPolicyRepo_Get_DefaultWhenUnset(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePolicyRepo(db)
	ctx := context.Background()

	p, err := repo.Get(ctx)
	require.NoError(t, err)
	def := domain.DefaultPolicy()
	assert.Equal(t, def.WorkHours.Start, p.WorkHours.Start)
	assert.Equal(t, def.WorkHours.End, p.WorkHours.End)
	assert.Equal(t, def.BlockDurationMinutes, p.BlockDurationMinutes)
	assert.Equal(t, def.Timezone, p.Timezone)
}

func TestPolicyRepo_UpsertRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePolicyRepo(db)
	ctx := context.Background()

	p := domain.DefaultPolicy()
	p.WorkHours.Start = "08:30"
	p.WorkHours.End = "16:30"
	p.WorkHours.Days = []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	p.Timezone = "Europe/Berlin"
	p.BlockDurationMinutes = 45
	require.NoError(t, repo.Upsert(ctx, &p))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:30", stored.WorkHours.Start)
	assert.Equal(t, "16:30", stored.WorkHours.End)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, stored.WorkHours.Days)
	assert.Equal(t, "Europe/Berlin", stored.Timezone)
	assert.Equal(t, 45, stored.BlockDurationMinutes)

	// Second upsert overwrites the singleton row.
	p.BlockDurationMinutes = 30
	require.NoError(t, repo.Upsert(ctx, &p))
	stored, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.BlockDurationMinutes)
}

func TestPolicyRepo_Upsert_RejectsInvalid(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePolicyRepo(db)
	ctx := context.Background()

	p := domain.DefaultPolicy()
	p.BlockDurationMinutes = 0
	assert.Error(t, repo.Upsert(ctx, &p))
}
