package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"isdialogmelding/internal/behandler/handler"
	apprecmodels "isdialogmelding/internal/dialogmelding/apprec/models"
	"isdialogmelding/internal/platform/kafka/consumer"
	id "isdialogmelding/pkg/domain"
)

const behandlerPath = "/api/v1/behandler/personident"

// =============================================================================
// Registry
// =============================================================================

func registerRegistrySteps(ctx *godog.ScenarioContext, w *world) {
	ctx.Step(`^the fastlege registry lists herId (\d+) at kontor herId (\d+) for "([^"]*)"$`,
		func(herID, kontorHerID int64, personident string) error {
			w.registry.setFastlege(personident, herID, kontorHerID)
			return nil
		})
	ctx.Step(`^partnerinfo maps kontor herId (\d+) to partnerId (\d+)$`,
		func(kontorHerID int64, partnerID int) error {
			w.registry.setPartner(kontorHerID, partnerID)
			return nil
		})
	ctx.Step(`^the fastlege registry is down$`, func() error {
		w.registry.setDown()
		return nil
	})
}

// =============================================================================
// Behandler lookup
// =============================================================================

func registerBehandlerSteps(ctx *godog.ScenarioContext, w *world) {
	ctx.Step(`^I request behandlere for "([^"]*)" with token "([^"]*)"$`, w.requestBehandlere)
	ctx.Step(`^I request behandlere for "([^"]*)" without a token$`, func(personident string) error {
		return w.requestBehandlere(personident, "")
	})
	ctx.Step(`^the response status should be (\d+)$`, w.responseStatusShouldBe)
	ctx.Step(`^the response should contain (\d+) behandlere?$`, w.responseShouldContain)
	ctx.Step(`^behandler (\d+) should have "([^"]*)" equal to "([^"]*)"$`, w.behandlerShouldHave)
	ctx.Step(`^the ledger should hold (\d+) behandlere?$`, w.ledgerShouldHold)
}

func (w *world) requestBehandlere(personident, token string) error {
	req := httptest.NewRequest(http.MethodGet, behandlerPath, nil)
	req.Header.Set(handler.HeaderPersonident, personident)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w.response = httptest.NewRecorder()
	w.router.ServeHTTP(w.response, req)

	w.behandlerRefs = nil
	if w.response.Code != http.StatusOK {
		return nil
	}
	body, err := w.responseBody()
	if err != nil {
		return err
	}
	for _, b := range body {
		ref, _ := b["behandlerRef"].(string)
		w.behandlerRefs = append(w.behandlerRefs, ref)
	}
	return nil
}

func (w *world) responseBody() ([]map[string]any, error) {
	if w.response == nil {
		return nil, fmt.Errorf("no request was made")
	}
	var body []map[string]any
	if err := json.Unmarshal(w.response.Body.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", w.response.Body.String(), err)
	}
	return body, nil
}

func (w *world) responseStatusShouldBe(expected int) error {
	if w.response == nil {
		return fmt.Errorf("no request was made")
	}
	if w.response.Code != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, w.response.Code, w.response.Body.String())
	}
	return nil
}

func (w *world) responseShouldContain(expected int) error {
	body, err := w.responseBody()
	if err != nil {
		return err
	}
	if len(body) != expected {
		return fmt.Errorf("expected %d behandlere, got %d", expected, len(body))
	}
	return nil
}

func (w *world) behandlerShouldHave(n int, field, expected string) error {
	body, err := w.responseBody()
	if err != nil {
		return err
	}
	if n < 1 || n > len(body) {
		return fmt.Errorf("response has %d behandlere, no behandler %d", len(body), n)
	}
	if got := fmt.Sprint(body[n-1][field]); got != expected {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, got)
	}
	return nil
}

func (w *world) ledgerShouldHold(expected int) error {
	if got := w.behandlere.CountBehandlere(); got != expected {
		return fmt.Errorf("expected %d stored behandlere, got %d", expected, got)
	}
	return nil
}

// =============================================================================
// Bestilling and apprec
// =============================================================================

func registerApprecSteps(ctx *godog.ScenarioContext, w *world) {
	ctx.Step(`^a bestilling was sent to behandler (\d+)$`, w.bestillingSentTo)
	ctx.Step(`^an apprec with status "([^"]*)" and error "([^"]*)" answers the bestilling$`, w.apprecAnswers)
	ctx.Step(`^the same apprec is delivered again$`, w.apprecRedelivered)
	ctx.Step(`^the apprec outcome should be "([^"]*)"$`, w.apprecOutcomeShouldBe)
	ctx.Step(`^behandler (\d+) should be invalidated$`, func(ctx context.Context, n int) error {
		return w.behandlerInvalidated(ctx, n, true)
	})
	ctx.Step(`^behandler (\d+) should not be invalidated$`, func(ctx context.Context, n int) error {
		return w.behandlerInvalidated(ctx, n, false)
	})
	ctx.Step(`^(\d+) apprecs? should be stored$`, w.apprecsStored)
}

func (w *world) behandlerRef(n int) (string, error) {
	if n < 1 || n > len(w.behandlerRefs) {
		return "", fmt.Errorf("no behandler %d in the last response", n)
	}
	return w.behandlerRefs[n-1], nil
}

func (w *world) bestillingSentTo(ctx context.Context, n int) error {
	ref, err := w.behandlerRef(n)
	if err != nil {
		return err
	}
	w.bestillingID = id.MessageID(uuid.New())
	payload, err := json.Marshal(map[string]any{
		"behandlerRef":                 ref,
		"personIdent":                  "01017012345",
		"dialogmeldingUuid":            w.bestillingID.String(),
		"dialogmeldingRefConversation": uuid.NewString(),
		"dialogmeldingType":            "DIALOG_NOTAT",
		"dialogmeldingKode":            8,
	})
	if err != nil {
		return err
	}
	if err := w.bestilling.Handle(ctx, &consumer.Message{Topic: "bestilling", Value: payload}); err != nil {
		return err
	}
	if w.bestillinger.Count() != 1 {
		return fmt.Errorf("bestilling was not stored")
	}
	return nil
}

func (w *world) apprecAnswers(ctx context.Context, status, errorCode string) error {
	w.apprecPayload = apprecXML(uuid.NewString(), w.bestillingID.String(), status, errorCode)
	return w.processApprec(ctx)
}

func (w *world) apprecRedelivered(ctx context.Context) error {
	if w.apprecPayload == nil {
		return fmt.Errorf("no apprec was delivered")
	}
	return w.processApprec(ctx)
}

func (w *world) processApprec(ctx context.Context) error {
	outcome, err := w.reconciler.Process(ctx, w.apprecPayload)
	if err != nil {
		return err
	}
	w.outcome = outcome
	return nil
}

func (w *world) apprecOutcomeShouldBe(expected string) error {
	if w.outcome != apprecmodels.Outcome(expected) {
		return fmt.Errorf("expected outcome %q, got %q", expected, w.outcome)
	}
	return nil
}

func (w *world) behandlerInvalidated(ctx context.Context, n int, expected bool) error {
	raw, err := w.behandlerRef(n)
	if err != nil {
		return err
	}
	ref, err := id.ParseBehandlerRef(raw)
	if err != nil {
		return err
	}
	stored, err := w.behandlere.FindBehandlerByRef(ctx, ref)
	if err != nil {
		return err
	}
	if stored.IsInvalidated() != expected {
		return fmt.Errorf("expected invalidated=%t, got %t", expected, stored.IsInvalidated())
	}
	return nil
}

func (w *world) apprecsStored(expected int) error {
	if got := w.apprecs.Count(); got != expected {
		return fmt.Errorf("expected %d stored apprecs, got %d", expected, got)
	}
	return nil
}

func apprecXML(apprecID, bestillingID, status, errorCode string) []byte {
	statusText := "OK"
	if status != "1" {
		statusText = "Avvist"
	}
	errorElement := ""
	if errorCode != "" {
		errorElement = fmt.Sprintf(`<Error V="%s" DN="Feil"/>`, errorCode)
	}
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<AppRec xmlns="http://www.kith.no/xmlstds/apprec/2004-11-21">
  <MsgType V="APPREC"/>
  <Id>%s</Id>
  <Status V="%s" DN="%s"/>
  %s
  <OriginalMsgId>
    <MsgType V="DIALOG_NOTAT" DN="Notat"/>
    <Id>%s</Id>
  </OriginalMsgId>
</AppRec>`, apprecID, status, statusText, errorElement, bestillingID))
}
