package store

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechdex/mechdex/internal/model"
)

func loadoutUnit() *model.ParsedUnit {
	return &model.ParsedUnit{
		Chassis:    "Atlas",
		Model:      "AS7-D",
		UnitType:   model.UnitTypeMek,
		RulesLevel: model.RulesStandard,
		Loadout: []model.LoadoutEntry{
			{Equipment: "Medium Laser", Location: "Right Arm", Quantity: 1},
			{Equipment: "LRM 20", Location: "Left Torso", Quantity: 1},
		},
	}
}

func TestReplaceLoadoutCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache := map[string]int{"medium-laser": 5, "lrm-20": 6}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unit_loadout").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO unit_loadout").
		WithArgs(7, 5, sqlmock.AnyArg(), 1, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO unit_loadout").
		WithArgs(7, 6, sqlmock.AnyArg(), 1, false).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	store := NewUnitStore(db)
	require.NoError(t, store.ReplaceLoadout(context.Background(), 7, loadoutUnit(), cache))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLoadoutRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cache := map[string]int{"medium-laser": 5, "lrm-20": 6}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unit_loadout").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO unit_loadout").
		WithArgs(7, 5, sqlmock.AnyArg(), 1, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO unit_loadout").
		WithArgs(7, 6, sqlmock.AnyArg(), 1, false).
		WillReturnError(errors.New("enum violation"))
	mock.ExpectRollback()

	store := NewUnitStore(db)
	err = store.ReplaceLoadout(context.Background(), 7, loadoutUnit(), cache)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LRM 20")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceLoadoutResolvesEquipmentBeforeTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	unit := &model.ParsedUnit{
		Chassis:    "Atlas",
		Model:      "AS7-D",
		UnitType:   model.UnitTypeMek,
		RulesLevel: model.RulesStandard,
		Loadout: []model.LoadoutEntry{
			{Equipment: "Medium Laser", Location: "Right Arm", Quantity: 2},
		},
	}
	cache := map[string]int{}

	// Equipment upsert happens before Begin so the shared row survives
	// a loadout rollback.
	mock.ExpectQuery("INSERT INTO equipment").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unit_loadout").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO unit_loadout").
		WithArgs(7, 9, sqlmock.AnyArg(), 2, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := NewUnitStore(db)
	require.NoError(t, store.ReplaceLoadout(context.Background(), 7, unit, cache))
	assert.Equal(t, map[string]int{"medium-laser": 9}, cache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceQuirksRollsBackOnLinkFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO quirks").
		WithArgs("command_mech", "command_mech").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unit_quirks").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO unit_quirks").
		WithArgs(7, 3).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	store := NewUnitStore(db)
	err = store.ReplaceQuirks(context.Background(), 7, []string{"command_mech"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceQuirksCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO quirks").
		WithArgs("command_mech", "command_mech").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM unit_quirks").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO unit_quirks").
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := NewUnitStore(db)
	require.NoError(t, store.ReplaceQuirks(context.Background(), 7, []string{"command_mech"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
