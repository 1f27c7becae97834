package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "isdialogmelding/pkg/domain-errors"
)

func TestNewIdent(t *testing.T) {
	t.Run("personident wins over hprId and herId", func(t *testing.T) {
		ident, err := NewIdent("01017012345", "9001", "404")
		require.NoError(t, err)
		assert.Equal(t, Ident{Kind: IdentPersonident, Value: "01017012345"}, ident)
	})

	t.Run("hprId wins over herId", func(t *testing.T) {
		ident, err := NewIdent("", "9001", "404")
		require.NoError(t, err)
		assert.Equal(t, Ident{Kind: IdentHprID, Value: "9001"}, ident)
	})

	t.Run("herId alone", func(t *testing.T) {
		ident, err := NewIdent("", "", "404")
		require.NoError(t, err)
		assert.Equal(t, IdentHerID, ident.Kind)
		assert.Equal(t, "herId:404", ident.String())
	})

	t.Run("no key is invalid input", func(t *testing.T) {
		ident, err := NewIdent("", "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.True(t, ident.IsNil())
	})
}

func TestBehandlerIdent(t *testing.T) {
	b := Behandler{HprID: "9001", HerID: "404"}
	ident, err := b.Ident()
	require.NoError(t, err)
	assert.Equal(t, IdentHprID, ident.Kind)
}

func TestNewBehandlerRef(t *testing.T) {
	a := NewBehandlerRef()
	b := NewBehandlerRef()
	assert.False(t, a.IsNil())
	assert.NotEqual(t, a, b)
}

func TestStoredBehandlerWithUpdate(t *testing.T) {
	stored := StoredBehandler{ID: 1, Behandler: Behandler{
		Fornavn: "Old", Etternavn: "Name", Telefon: "111", Kategori: KategoriLege, Mottatt: baseTime,
	}}

	t.Run("newer candidate overwrites mutable fields", func(t *testing.T) {
		candidate := Behandler{Fornavn: "New", Mellomnavn: "M", Etternavn: "Person", Telefon: "222", Mottatt: baseTime.Add(time.Hour)}
		assert.True(t, stored.HasNewerData(candidate))

		got := stored.WithUpdate(candidate)
		assert.Equal(t, "New", got.Fornavn)
		assert.Equal(t, "M", got.Mellomnavn)
		assert.Equal(t, "Person", got.Etternavn)
		assert.Equal(t, "222", got.Telefon)
		assert.Equal(t, KategoriLege, got.Kategori, "blank kategori keeps stored value")
		assert.Equal(t, candidate.Mottatt, got.Mottatt)
	})

	t.Run("equal mottatt is not newer", func(t *testing.T) {
		assert.False(t, stored.HasNewerData(Behandler{Mottatt: baseTime}))
	})

	t.Run("blank names keep stored names", func(t *testing.T) {
		got := stored.WithUpdate(Behandler{Mottatt: baseTime.Add(time.Hour)})
		assert.Equal(t, "Old", got.Fornavn)
		assert.Equal(t, "Name", got.Etternavn)
	})
}
