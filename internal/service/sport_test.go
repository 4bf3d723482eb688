package service

import (
	"testing"

	"courtbook/internal/repository"
	apperrors "courtbook/pkg/errors"
	"courtbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSportService(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.sports.Create(f.ctx, &model.Sport{ID: 1, Name: "Handebol", MaxPlayers: 14})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDuplicateKey))

	_, err = f.sports.Create(f.ctx, &model.Sport{ID: 4, Name: "H", MaxPlayers: 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSchemaViolation))

	sp, err := f.sports.Create(f.ctx, &model.Sport{ID: 4, Name: "  Handebol ", MaxPlayers: 14})
	require.NoError(t, err)
	assert.Equal(t, "Handebol", sp.Name)

	name := "Handebol de Praia"
	sp, err = f.sports.Update(f.ctx, 4, &model.SportUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, sp.Name)
	assert.Equal(t, 14, sp.MaxPlayers)

	sports, total, err := f.sports.List(f.ctx, model.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, sports, 2)

	err = f.sports.Delete(f.ctx, 3)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeReferentialConflict))
	refs := apperrors.AsAppError(err).Details["references"].(map[string]int64)
	assert.Equal(t, int64(2), refs[repository.GymnasiumsCollection])

	require.NoError(t, f.sports.Delete(f.ctx, 4))
	_, err = f.sports.GetByKey(f.ctx, 4)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
