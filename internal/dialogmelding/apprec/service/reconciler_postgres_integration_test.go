//go:build integration

package service_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	behandlermodels "isdialogmelding/internal/behandler/models"
	behandlerstore "isdialogmelding/internal/behandler/store"
	"isdialogmelding/internal/dialogmelding/apprec/models"
	"isdialogmelding/internal/dialogmelding/apprec/service"
	"isdialogmelding/internal/dialogmelding/apprec/store"
	bestillingmodels "isdialogmelding/internal/dialogmelding/bestilling/models"
	bestillingstore "isdialogmelding/internal/dialogmelding/bestilling/store"
	id "isdialogmelding/pkg/domain"
	txcontext "isdialogmelding/pkg/platform/tx"
	"isdialogmelding/pkg/testutil/containers"
)

type ReconcilerPostgresSuite struct {
	suite.Suite
	postgres     *containers.PostgresContainer
	behandlere   *behandlerstore.PostgresStore
	bestillinger *bestillingstore.PostgresStore
	apprecs      *store.PostgresStore
	reconciler   *service.Reconciler
}

func TestReconcilerPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ReconcilerPostgresSuite))
}

func (s *ReconcilerPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.behandlere = behandlerstore.NewPostgres(s.postgres.DB)
	s.bestillinger = bestillingstore.NewPostgres(s.postgres.DB)
	s.apprecs = store.NewPostgres(s.postgres.DB)
	s.reconciler = service.NewReconciler(
		s.apprecs,
		s.bestillinger,
		s.behandlere,
		txcontext.NewRunner(s.postgres.DB, 10*time.Second),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func (s *ReconcilerPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"behandler_dialogmelding_apprec", "behandler_dialogmelding_bestilling",
		"behandler_arbeidstaker", "behandler", "behandler_kontor")
	s.Require().NoError(err)
}

func (s *ReconcilerPostgresSuite) lagBestilling(partnerID id.PartnerID) (*behandlermodels.StoredBehandler, string) {
	ctx := context.Background()
	now := time.Now()
	kontor, _, err := s.behandlere.CreateKontor(ctx, behandlermodels.Kontor{PartnerID: partnerID, Mottatt: now})
	s.Require().NoError(err)
	b, err := s.behandlere.CreateBehandler(ctx, kontor.ID, behandlermodels.Behandler{
		Ref:         behandlermodels.NewBehandlerRef(),
		Kategori:    behandlermodels.KategoriLege,
		Personident: "12125678910",
		Fornavn:     "Dana",
		Etternavn:   "Lege",
		Mottatt:     now,
	})
	s.Require().NoError(err)

	messageID := uuid.New()
	_, err = s.bestillinger.Create(ctx, b.ID, bestillingmodels.Bestilling{
		UUID:                    id.MessageID(messageID),
		BehandlerRef:            b.Ref,
		ArbeidstakerPersonident: "01017012345",
		Type:                    "DIALOG_NOTAT",
		Kode:                    1,
	})
	s.Require().NoError(err)
	return b, messageID.String()
}

func (s *ReconcilerPostgresSuite) payload(name, apprecID, bestillingID string) []byte {
	raw, err := os.ReadFile(filepath.Join("..", "testdata", name))
	s.Require().NoError(err)
	out := strings.ReplaceAll(string(raw), "APPREC_ID", apprecID)
	return []byte(strings.ReplaceAll(out, "BESTILLING_ID", bestillingID))
}

func (s *ReconcilerPostgresSuite) apprecRows() int {
	var n int
	err := s.postgres.DB.QueryRowContext(context.Background(),
		"SELECT count(*) FROM behandler_dialogmelding_apprec").Scan(&n)
	s.Require().NoError(err)
	return n
}

func (s *ReconcilerPostgresSuite) TestOKApprec() {
	ctx := context.Background()
	behandler, bestillingID := s.lagBestilling(1)
	apprecID := uuid.NewString()

	outcome, err := s.reconciler.Process(ctx, s.payload("apprec_ok.xml", apprecID, bestillingID))
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, outcome)

	stored, err := s.apprecs.Find(ctx, id.MessageID(uuid.MustParse(apprecID)))
	s.Require().NoError(err)
	s.Equal("1", stored.StatusKode)
	s.Equal("OK", stored.StatusTekst)
	s.Empty(stored.FeilKode)
	s.Equal(bestillingID, stored.BestillingUUID.String())

	found, err := s.behandlere.FindBehandlerByRef(ctx, behandler.Ref)
	s.Require().NoError(err)
	s.Nil(found.Invalidated)
}

func (s *ReconcilerPostgresSuite) TestUnknownRecipientRedeliveredConcurrently() {
	ctx := context.Background()
	behandler, bestillingID := s.lagBestilling(2)
	payload := s.payload("apprec_error_ukjent_mottaker.xml", uuid.NewString(), bestillingID)
	const deliveries = 5

	var wg sync.WaitGroup
	outcomes := make(chan models.Outcome, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := s.reconciler.Process(ctx, payload)
			if err == nil {
				outcomes <- outcome
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	applied := 0
	for o := range outcomes {
		if o == models.OutcomeApplied {
			applied++
		}
	}
	s.Equal(1, applied)
	s.Equal(1, s.apprecRows())

	found, err := s.behandlere.FindBehandlerByRef(ctx, behandler.Ref)
	s.Require().NoError(err)
	s.NotNil(found.Invalidated)
}

func (s *ReconcilerPostgresSuite) TestUnknownBestilling() {
	s.lagBestilling(3)

	outcome, err := s.reconciler.Process(context.Background(),
		s.payload("apprec_ok.xml", uuid.NewString(), uuid.NewString()))
	s.Require().NoError(err)

	s.Equal(models.OutcomeUnmatched, outcome)
	s.Zero(s.apprecRows())
}
