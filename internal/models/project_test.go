package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectToResponse(t *testing.T) {
	link := "https://example.com"
	p := &Project{
		ID:          7,
		Title:       "Portfolio",
		Description: "Site",
		ProjectLink: &link,
		Active:      true,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(p.ToResponse())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	assert.Equal(t, float64(7), got["id"])
	assert.Equal(t, "Portfolio", got["titulo"])
	assert.Equal(t, []any{}, got["tecnologias"])
	assert.Equal(t, "https://example.com", got["linkProjeto"])
	assert.Nil(t, got["linkGithub"])
	assert.Nil(t, got["imagem"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["criadoEm"])
	assert.NotContains(t, got, "ativo")
}
