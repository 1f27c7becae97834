package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"

	behandlerhandler "isdialogmelding/internal/behandler/handler"
	behandlerservice "isdialogmelding/internal/behandler/service"
	behandlerstore "isdialogmelding/internal/behandler/store"
	apprecmodels "isdialogmelding/internal/dialogmelding/apprec/models"
	apprecservice "isdialogmelding/internal/dialogmelding/apprec/service"
	apprecstore "isdialogmelding/internal/dialogmelding/apprec/store"
	bestillingconsumer "isdialogmelding/internal/dialogmelding/bestilling/consumer"
	bestillingstore "isdialogmelding/internal/dialogmelding/bestilling/store"
	httpapi "isdialogmelding/internal/http"
	"isdialogmelding/internal/platform/metrics"
	"isdialogmelding/internal/registry/fastlege"
	"isdialogmelding/internal/registry/partnerinfo"
	"isdialogmelding/internal/registry/providers"
	id "isdialogmelding/pkg/domain"
)

const (
	fastlegePath    = "/fastlegerest/api/v2/fastlege/aktiv/personident"
	partnerinfoPath = "/api/v2/behandler"
)

// world is the state one scenario runs against: in-memory stores behind the
// real services, and a fake registry over HTTP.
type world struct {
	registry *fakeRegistry
	server   *httptest.Server

	behandlere   *behandlerstore.InMemoryStore
	bestillinger *bestillingstore.InMemoryStore
	apprecs      *apprecstore.InMemoryStore

	router     http.Handler
	reconciler *apprecservice.Reconciler
	bestilling *bestillingconsumer.Handler

	response      *httptest.ResponseRecorder
	behandlerRefs []string
	bestillingID  id.MessageID
	apprecPayload []byte
	outcome       apprecmodels.Outcome
}

func (w *world) reset(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w.registry = &fakeRegistry{
		fastleger: map[string]*fastlege.Fastlege{},
		partners:  map[string]int{},
	}
	w.server = httptest.NewServer(w.registry)

	w.behandlere = behandlerstore.NewInMemoryStore()
	w.bestillinger = bestillingstore.NewInMemoryStore()
	w.apprecs = apprecstore.NewInMemoryStore()
	tx := behandlerstore.NewMemoryTx()

	ledger := behandlerservice.NewLedger(w.behandlere, tx, logger)
	service := behandlerservice.New(
		ledger,
		w.behandlere,
		fastlege.New(w.server.URL, 2*time.Second, logger),
		partnerinfo.New(w.server.URL, 2*time.Second, partnerinfo.NewInMemoryCache(time.Minute), logger),
		logger,
	)
	reg := prometheus.NewRegistry()
	w.router = httpapi.NewRouter(httpapi.Config{
		Logger:   logger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}, behandlerhandler.New(service, logger))

	w.reconciler = apprecservice.NewReconciler(w.apprecs, w.bestillinger, w.behandlere, tx, logger)
	w.bestilling = bestillingconsumer.NewHandler(w.behandlere, w.bestillinger, logger)

	w.response = nil
	w.behandlerRefs = nil
	w.bestillingID = id.MessageID{}
	w.apprecPayload = nil
	w.outcome = ""
	return ctx, nil
}

func (w *world) close(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
	if w.server != nil {
		w.server.Close()
	}
	return ctx, err
}

// fakeRegistry answers the fastlege and partnerinfo endpoints.
type fakeRegistry struct {
	mu        sync.Mutex
	down      bool
	fastleger map[string]*fastlege.Fastlege
	partners  map[string]int
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.down {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	switch r.URL.Path {
	case fastlegePath:
		lege, ok := f.fastleger[r.Header.Get(providers.HeaderPersonident)]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, lege)
	case partnerinfoPath:
		partnerID, ok := f.partners[r.URL.Query().Get("herid")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, []map[string]int{{"partnerId": partnerID}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRegistry) setFastlege(personident string, herID, kontorHerID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hpr := herID + 9000
	f.fastleger[personident] = &fastlege.Fastlege{
		Fornavn:                  "Kari",
		Etternavn:                "Lege",
		HerID:                    &herID,
		HelsepersonellregisterID: &hpr,
		ForeldreEnhetHerID:       &kontorHerID,
		Fastlegekontor: &fastlege.Kontor{
			Navn:      "Legesenteret",
			Orgnummer: "999888777",
			Telefon:   "12345678",
		},
	}
}

func (f *fakeRegistry) setPartner(kontorHerID int64, partnerID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partners[strconv.FormatInt(kontorHerID, 10)] = partnerID
}

func (f *fakeRegistry) setDown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
