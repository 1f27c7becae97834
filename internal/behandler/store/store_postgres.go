package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"isdialogmelding/internal/behandler/models"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/requestcontext"
)

// PostgresStore persists behandler data in PostgreSQL. Writes join the
// transaction carried in the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed behandler store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const behandlerColumns = `
	b.id, b.kontor_id, b.behandler_ref, b.kategori, b.personident, b.hpr_id, b.her_id,
	b.fornavn, b.mellomnavn, b.etternavn, b.telefon, b.mottatt, b.invalidated,
	k.partner_id, k.her_id, k.navn, k.adresse, k.postnummer, k.poststed, k.orgnummer,
	k.dialogmelding_enabled, k.system, k.mottatt`

const kontorColumns = `
	id, partner_id, her_id, navn, adresse, postnummer, poststed, orgnummer,
	dialogmelding_enabled, system, mottatt`

func identColumn(kind models.IdentKind) (string, error) {
	switch kind {
	case models.IdentPersonident:
		return "b.personident", nil
	case models.IdentHprID:
		return "b.hpr_id", nil
	case models.IdentHerID:
		return "b.her_id", nil
	default:
		return "", fmt.Errorf("unknown ident kind %q", kind)
	}
}

// FindBehandler returns the behandler with the given identity at the kontor
// identified by partnerID.
func (s *PostgresStore) FindBehandler(ctx context.Context, ident models.Ident, partnerID id.PartnerID) (*models.StoredBehandler, error) {
	column, err := identColumn(ident.Kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + behandlerColumns + `
		FROM behandler b
		JOIN behandler_kontor k ON k.id = b.kontor_id
		WHERE ` + column + ` = $1 AND k.partner_id = $2
		ORDER BY b.id
		LIMIT 1`
	stored, err := scanBehandler(execer(ctx, s.db).QueryRowContext(ctx, query, ident.Value, int(partnerID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find behandler: %w", err)
	}
	return stored, nil
}

// FindBehandlerByRef returns the behandler with the given public reference.
func (s *PostgresStore) FindBehandlerByRef(ctx context.Context, ref id.BehandlerRef) (*models.StoredBehandler, error) {
	query := `SELECT ` + behandlerColumns + `
		FROM behandler b
		JOIN behandler_kontor k ON k.id = b.kontor_id
		WHERE b.behandler_ref = $1`
	stored, err := scanBehandler(execer(ctx, s.db).QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find behandler by ref: %w", err)
	}
	return stored, nil
}

// CreateKontor inserts k unless a kontor with the same partnerId exists.
// created is false when another writer got there first.
func (s *PostgresStore) CreateKontor(ctx context.Context, k models.Kontor) (kontor *models.Kontor, created bool, err error) {
	query := `
		INSERT INTO behandler_kontor (partner_id, her_id, navn, adresse, postnummer, poststed, orgnummer,
			dialogmelding_enabled, system, mottatt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (partner_id) DO NOTHING
		RETURNING ` + kontorColumns
	row := execer(ctx, s.db).QueryRowContext(ctx, query,
		int(k.PartnerID), nullString(k.HerID.String()), nullString(k.Navn), nullString(k.Adresse),
		nullString(k.Postnummer), nullString(k.Poststed), nullString(k.Orgnummer),
		k.DialogmeldingEnabled, nullString(k.System), k.Mottatt,
	)
	kontor, err = scanKontor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, writeErr("create kontor", err)
	}
	return kontor, true, nil
}

// FindKontorForUpdate returns the kontor for partnerID and locks its row for
// the rest of the transaction.
func (s *PostgresStore) FindKontorForUpdate(ctx context.Context, partnerID id.PartnerID) (*models.Kontor, error) {
	query := `SELECT ` + kontorColumns + ` FROM behandler_kontor WHERE partner_id = $1 FOR UPDATE`
	kontor, err := scanKontor(execer(ctx, s.db).QueryRowContext(ctx, query, int(partnerID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find kontor: %w", err)
	}
	return kontor, nil
}

// UpdateKontor writes the mergeable fields of k.
func (s *PostgresStore) UpdateKontor(ctx context.Context, k models.Kontor) error {
	query := `
		UPDATE behandler_kontor
		SET system = $2, adresse = $3, postnummer = $4, poststed = $5, mottatt = $6, updated_at = $7
		WHERE id = $1`
	res, err := execer(ctx, s.db).ExecContext(ctx, query,
		k.ID, nullString(k.System), nullString(k.Adresse), nullString(k.Postnummer), nullString(k.Poststed),
		k.Mottatt, requestcontext.Now(ctx),
	)
	if err != nil {
		return writeErr("update kontor", err)
	}
	return requireRow("update kontor", res)
}

// CreateBehandler inserts b at the kontor with id kontorID.
func (s *PostgresStore) CreateBehandler(ctx context.Context, kontorID int64, b models.Behandler) (*models.StoredBehandler, error) {
	query := `
		INSERT INTO behandler (behandler_ref, kontor_id, personident, her_id, hpr_id, fornavn, mellomnavn,
			etternavn, telefon, kategori, mottatt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	var rowID int64
	err := execer(ctx, s.db).QueryRowContext(ctx, query,
		b.Ref.String(), kontorID, nullString(b.Personident.String()), nullString(b.HerID.String()),
		nullString(b.HprID.String()), b.Fornavn, nullString(b.Mellomnavn), b.Etternavn,
		nullString(b.Telefon), nullString(string(b.Kategori)), b.Mottatt,
	).Scan(&rowID)
	if err != nil {
		return nil, writeErr("create behandler", err)
	}
	return &models.StoredBehandler{ID: rowID, KontorID: kontorID, Behandler: b}, nil
}

// UpdateBehandler overwrites the mutable fields of the behandler with id behandlerID.
func (s *PostgresStore) UpdateBehandler(ctx context.Context, behandlerID int64, b models.Behandler) error {
	query := `
		UPDATE behandler
		SET fornavn = $2, mellomnavn = $3, etternavn = $4, telefon = $5, kategori = $6, mottatt = $7, updated_at = $8
		WHERE id = $1`
	res, err := execer(ctx, s.db).ExecContext(ctx, query,
		behandlerID, b.Fornavn, nullString(b.Mellomnavn), b.Etternavn, nullString(b.Telefon),
		nullString(string(b.Kategori)), b.Mottatt, requestcontext.Now(ctx),
	)
	if err != nil {
		return writeErr("update behandler", err)
	}
	return requireRow("update behandler", res)
}

// InvalidateBehandler marks the behandler unreachable. Only the first
// invalidation is kept; updated reports whether this call set it.
func (s *PostgresStore) InvalidateBehandler(ctx context.Context, behandlerID int64, at time.Time) (updated bool, err error) {
	query := `
		UPDATE behandler
		SET invalidated = $2, updated_at = $2
		WHERE id = $1 AND invalidated IS NULL`
	res, err := execer(ctx, s.db).ExecContext(ctx, query, behandlerID, at)
	if err != nil {
		return false, fmt.Errorf("invalidate behandler: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("invalidate behandler: %w", err)
	}
	return n > 0, nil
}

// LockPerson serialises relation writes for personident until the transaction ends.
func (s *PostgresStore) LockPerson(ctx context.Context, personident id.Personident) error {
	_, err := execer(ctx, s.db).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, personident.String())
	if err != nil {
		return fmt.Errorf("lock person: %w", err)
	}
	return nil
}

// ListRelasjoner returns the relations of personident, newest first.
func (s *PostgresStore) ListRelasjoner(ctx context.Context, personident id.Personident) ([]models.StoredRelasjon, error) {
	query := `
		SELECT id, behandler_id, type, created_at
		FROM behandler_arbeidstaker
		WHERE arbeidstaker_personident = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, personident.String())
	if err != nil {
		return nil, fmt.Errorf("list relasjoner: %w", err)
	}
	defer rows.Close()

	var result []models.StoredRelasjon
	for rows.Next() {
		var (
			r    models.StoredRelasjon
			kind string
		)
		if err := rows.Scan(&r.ID, &r.BehandlerID, &kind, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relasjon: %w", err)
		}
		r.Type = models.RelasjonType(kind)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list relasjoner: %w", err)
	}
	return result, nil
}

// CreateRelasjon links the behandler with id behandlerID to the arbeidstaker in rel.
func (s *PostgresStore) CreateRelasjon(ctx context.Context, behandlerID int64, rel models.Relasjon) error {
	query := `
		INSERT INTO behandler_arbeidstaker (uuid, type, arbeidstaker_personident, behandler_id,
			fornavn, mellomnavn, etternavn, mottatt)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := execer(ctx, s.db).ExecContext(ctx, query,
		uuid.NewString(), string(rel.Type), rel.ArbeidstakerPersonident.String(), behandlerID,
		rel.Fornavn, nullString(rel.Mellomnavn), rel.Etternavn, rel.Mottatt,
	)
	if err != nil {
		return writeErr("create relasjon", err)
	}
	return nil
}

// UpdateRelasjon refreshes mottatt and names on the existing relation of the
// same kind between rel's arbeidstaker and behandlerID.
func (s *PostgresStore) UpdateRelasjon(ctx context.Context, behandlerID int64, rel models.Relasjon) error {
	query := `
		UPDATE behandler_arbeidstaker
		SET mottatt = $4, fornavn = $5, mellomnavn = $6, etternavn = $7, updated_at = $8
		WHERE arbeidstaker_personident = $1 AND behandler_id = $2 AND type = $3`
	_, err := execer(ctx, s.db).ExecContext(ctx, query,
		rel.ArbeidstakerPersonident.String(), behandlerID, string(rel.Type),
		rel.Mottatt, rel.Fornavn, nullString(rel.Mellomnavn), rel.Etternavn, requestcontext.Now(ctx),
	)
	if err != nil {
		return writeErr("update relasjon", err)
	}
	return nil
}

// ListBehandlere returns the behandlere related to personident by kind, most
// recently related first. Invalidated behandlere are included.
func (s *PostgresStore) ListBehandlere(ctx context.Context, personident id.Personident, kind models.RelasjonType) ([]models.StoredBehandler, error) {
	query := `SELECT ` + behandlerColumns + `
		FROM behandler_arbeidstaker ba
		JOIN behandler b ON b.id = ba.behandler_id
		JOIN behandler_kontor k ON k.id = b.kontor_id
		WHERE ba.arbeidstaker_personident = $1 AND ba.type = $2
		ORDER BY ba.created_at DESC, ba.id DESC`
	rows, err := execer(ctx, s.db).QueryContext(ctx, query, personident.String(), string(kind))
	if err != nil {
		return nil, fmt.Errorf("list behandlere: %w", err)
	}
	defer rows.Close()

	var result []models.StoredBehandler
	for rows.Next() {
		stored, err := scanBehandler(rows)
		if err != nil {
			return nil, fmt.Errorf("scan behandler: %w", err)
		}
		result = append(result, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list behandlere: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBehandler(row rowScanner) (*models.StoredBehandler, error) {
	var (
		s                                                models.StoredBehandler
		ref                                              uuid.UUID
		kategori, personident, hprID, herID              sql.NullString
		mellomnavn, telefon                              sql.NullString
		invalidated                                      sql.NullTime
		partnerID                                        int
		kontorHerID, navn, adresse, postnummer, poststed sql.NullString
		orgnummer, system                                sql.NullString
		kontorMottatt                                    time.Time
	)
	err := row.Scan(
		&s.ID, &s.KontorID, &ref, &kategori, &personident, &hprID, &herID,
		&s.Fornavn, &mellomnavn, &s.Etternavn, &telefon, &s.Mottatt, &invalidated,
		&partnerID, &kontorHerID, &navn, &adresse, &postnummer, &poststed, &orgnummer,
		&s.Kontor.DialogmeldingEnabled, &system, &kontorMottatt,
	)
	if err != nil {
		return nil, err
	}
	s.Ref = id.BehandlerRef(ref)
	s.Kategori = models.Kategori(fromNull(kategori))
	s.Personident = id.Personident(fromNull(personident))
	s.HprID = id.HprID(fromNull(hprID))
	s.HerID = id.HerID(fromNull(herID))
	s.Mellomnavn = fromNull(mellomnavn)
	s.Telefon = fromNull(telefon)
	if invalidated.Valid {
		at := invalidated.Time
		s.Invalidated = &at
	}
	s.Kontor.ID = s.KontorID
	s.Kontor.PartnerID = id.PartnerID(partnerID)
	s.Kontor.HerID = id.HerID(fromNull(kontorHerID))
	s.Kontor.Navn = fromNull(navn)
	s.Kontor.Adresse = fromNull(adresse)
	s.Kontor.Postnummer = fromNull(postnummer)
	s.Kontor.Poststed = fromNull(poststed)
	s.Kontor.Orgnummer = fromNull(orgnummer)
	s.Kontor.System = fromNull(system)
	s.Kontor.Mottatt = kontorMottatt
	return &s, nil
}

func scanKontor(row rowScanner) (*models.Kontor, error) {
	var (
		k                                                 models.Kontor
		partnerID                                         int
		herID, navn, adresse, postnummer, poststed, orgnr sql.NullString
		system                                            sql.NullString
	)
	err := row.Scan(&k.ID, &partnerID, &herID, &navn, &adresse, &postnummer, &poststed, &orgnr,
		&k.DialogmeldingEnabled, &system, &k.Mottatt)
	if err != nil {
		return nil, err
	}
	k.PartnerID = id.PartnerID(partnerID)
	k.HerID = id.HerID(fromNull(herID))
	k.Navn = fromNull(navn)
	k.Adresse = fromNull(adresse)
	k.Postnummer = fromNull(postnummer)
	k.Poststed = fromNull(poststed)
	k.Orgnummer = fromNull(orgnr)
	k.System = fromNull(system)
	return &k, nil
}
