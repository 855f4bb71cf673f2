package value_objects_test

import (
	"testing"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_RoundTripNames(t *testing.T) {
	names := []string{"backlog", "sprint", "in-progress", "review", "done"}
	cols := value_objects.Columns()
	require.Len(t, cols, len(names))

	for i, col := range cols {
		assert.Equal(t, names[i], col.String())
		parsed, err := value_objects.ParseColumn(names[i])
		require.NoError(t, err)
		assert.Equal(t, col, parsed)
		assert.True(t, col.IsValid())
	}
}

func TestParseColumn_Invalid(t *testing.T) {
	for _, input := range []string{"", "todo", "in_progress", "in progress"} {
		_, err := value_objects.ParseColumn(input)
		assert.ErrorIs(t, err, value_objects.ErrInvalidColumn, input)
	}
	assert.False(t, value_objects.Column(0).IsValid())
	assert.False(t, value_objects.Column(6).IsValid())
}

func TestColumn_Title(t *testing.T) {
	assert.Equal(t, "In Progress", value_objects.ColumnInProgress.Title())
	assert.Equal(t, "Backlog", value_objects.ColumnBacklog.Title())
}

func TestParseCategory(t *testing.T) {
	c, err := value_objects.ParseCategory("Professional")
	require.NoError(t, err)
	assert.Equal(t, value_objects.CategoryProfessional, c)

	c, err = value_objects.ParseCategory("private")
	require.NoError(t, err)
	assert.Equal(t, value_objects.CategoryPrivate, c)

	_, err = value_objects.ParseCategory("work")
	assert.ErrorIs(t, err, value_objects.ErrInvalidCategory)
}

func TestParseHorizon(t *testing.T) {
	for _, h := range value_objects.Horizons() {
		parsed, err := value_objects.ParseHorizon(h.String())
		require.NoError(t, err)
		assert.Equal(t, h, parsed)
	}

	_, err := value_objects.ParseHorizon("daily")
	assert.ErrorIs(t, err, value_objects.ErrInvalidHorizon)
}

func TestInitiatives(t *testing.T) {
	all := value_objects.Initiatives()
	assert.Len(t, all, 10)
	assert.Equal(t, value_objects.InitiativeMemberAutomations, all[0])
	assert.Equal(t, value_objects.InitiativeGeneral, all[len(all)-1])

	i, err := value_objects.ParseInitiative("the grim podcast")
	require.NoError(t, err)
	assert.Equal(t, value_objects.InitiativeGrimPodcast, i)
	assert.Equal(t, "THE GRIM Podcast", i.String())

	_, err = value_objects.ParseInitiative("Side Quest")
	assert.ErrorIs(t, err, value_objects.ErrInvalidInitiative)
}
