package fastlege

// Adresse is a postal or visiting address in the GP registry.
type Adresse struct {
	Adresse    string `json:"adresse"`
	Postnummer string `json:"postnummer"`
	Poststed   string `json:"poststed"`
}

// Kontor is the GP office as returned by the registry.
type Kontor struct {
	Navn           string   `json:"navn"`
	Besoeksadresse *Adresse `json:"besoeksadresse"`
	Postadresse    *Adresse `json:"postadresse"`
	Telefon        string   `json:"telefon"`
	Epost          string   `json:"epost"`
	Orgnummer      string   `json:"orgnummer"`
}

// Fastlege is the active GP of a person.
type Fastlege struct {
	Fornavn                  string  `json:"fornavn"`
	Mellomnavn               string  `json:"mellomnavn"`
	Etternavn                string  `json:"etternavn"`
	Fnr                      string  `json:"fnr"`
	HerID                    *int64  `json:"herId"`
	HelsepersonellregisterID *int64  `json:"helsepersonellregisterId"`
	ForeldreEnhetHerID       *int64  `json:"foreldreEnhetHerId"`
	Fastlegekontor           *Kontor `json:"fastlegekontor"`
}

// HasIdentity reports whether f carries at least one identity key.
func (f Fastlege) HasIdentity() bool {
	return f.Fnr != "" || f.HerID != nil || f.HelsepersonellregisterID != nil
}
