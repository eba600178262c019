package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/surplusbot/market/domain"
)

func TestTablesHaveSameKeys(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	uz := c.Keys(domain.LangUz)
	require.NotEmpty(t, uz)
	assert.Equal(t, uz, c.Keys(domain.LangRu))
}

func TestGetFallsBack(t *testing.T) {
	c := MustLoad()

	assert.Equal(t, "Sotuvchi", c.Get(domain.LangUz, "role.seller"))
	assert.Equal(t, "Продавец", c.Get(domain.LangRu, "role.seller"))
	assert.Equal(t, "Sotuvchi", c.Get(domain.Language("en"), "role.seller"))
	assert.Equal(t, "no.such.key", c.Get(domain.LangRu, "no.such.key"))
}

func TestLanguageLabelsAreShared(t *testing.T) {
	c := MustLoad()
	for _, key := range []string{"language.uz", "language.ru"} {
		assert.Equal(t, c.Get(domain.LangUz, key), c.Get(domain.LangRu, key), key)
	}
	assert.Equal(t, "Oʻzbekcha", c.Get(domain.LangUz, "language.uz"))
}

func TestRenderReplacesPlaceholders(t *testing.T) {
	c := MustLoad()

	got := c.Render(domain.LangRu, "admin.swept", map[string]string{"count": "3"})
	assert.Equal(t, "Удалено броней: 3.", got)

	got = c.Render(domain.LangUz, "registration.user_done", map[string]string{"name": "Ali"})
	assert.Equal(t, "Ali, siz roʻyxatdan oʻtdingiz.", got)
}
