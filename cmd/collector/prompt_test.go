package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobposting-collector/internal/models"
)

func TestPrompter_Edit(t *testing.T) {
	rec := models.NewJobRecord("https://www.linkedin.com/jobs/view/10/")
	rec.Position = "Engineer"
	rec.City = "Hanoi"

	// position, company, url, city, country, work, demand, match, budget (bad, then good)
	input := strings.Join([]string{"", "Soylent", "", "-", "Vietnam", "remote", "", "HIGH", "abc", "1,500"}, "\n") + "\n"
	var out bytes.Buffer

	edited, err := newPrompter(strings.NewReader(input), &out).edit(rec)

	require.NoError(t, err)
	assert.Equal(t, "Engineer", edited.Position)
	assert.Equal(t, "Soylent", edited.Company)
	assert.Empty(t, edited.City)
	assert.Equal(t, "Vietnam", edited.Country)
	assert.Equal(t, models.WorkRemote, edited.WorkArrangement)
	assert.Equal(t, models.MatchHigh, edited.Match)
	require.NotNil(t, edited.Budget)
	assert.Equal(t, 1500.0, *edited.Budget)
	assert.Contains(t, out.String(), "budget must be a number")
}

func TestPrompter_EOF(t *testing.T) {
	_, err := newPrompter(strings.NewReader("only one line\n"), io.Discard).edit(models.JobRecord{})

	assert.ErrorIs(t, err, io.EOF)
}

func TestParseBudget(t *testing.T) {
	v, err := parseBudget("")
	assert.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseBudget("-1")
	assert.Error(t, err)
}
