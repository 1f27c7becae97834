package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"isdialogmelding/internal/registry/fastlege"
	id "isdialogmelding/pkg/domain"
)

func TestCandidateFromFastlege(t *testing.T) {
	t.Run("maps registry fields", func(t *testing.T) {
		got := candidateFromFastlege(*activeFastlege(), 321, t0)

		assert.Equal(t, legeFnr, got.Personident)
		assert.Equal(t, id.HerID("404"), got.HerID)
		assert.Equal(t, id.HprID("9001"), got.HprID)
		assert.Equal(t, "Legesenteret", got.Kontor.Navn)
		assert.Equal(t, "987654321", got.Kontor.Orgnummer)
		assert.Equal(t, "Storgata 1", got.Kontor.Adresse)
		assert.Empty(t, got.Kontor.System)
		assert.Equal(t, t0, got.Mottatt)
		assert.Equal(t, t0, got.Kontor.Mottatt)
	})

	t.Run("invalid fnr is dropped", func(t *testing.T) {
		f := activeFastlege()
		f.Fnr = "not-a-fnr"
		got := candidateFromFastlege(*f, 321, t0)
		assert.True(t, got.Personident.IsNil())

		ident, err := got.Ident()
		assert.NoError(t, err)
		assert.Equal(t, "hprId:9001", ident.String())
	})

	t.Run("kontor without postadresse", func(t *testing.T) {
		f := activeFastlege()
		f.Fastlegekontor = &fastlege.Kontor{Navn: "Uten adresse"}
		got := candidateFromFastlege(*f, 321, t0)
		assert.False(t, got.Kontor.HasCompleteAddress())
	})
}
