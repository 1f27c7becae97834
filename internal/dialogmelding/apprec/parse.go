// Package apprec reads KITH application receipts (AppRec) returned for sent
// dialogmeldinger.
package apprec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"isdialogmelding/internal/dialogmelding/apprec/models"
	id "isdialogmelding/pkg/domain"
)

// ErrParse is returned for payloads that do not hold a usable AppRec.
var ErrParse = errors.New("apprec: parse failure")

type codedValue struct {
	V  string `xml:"V,attr"`
	DN string `xml:"DN,attr"`
}

type appRecDocument struct {
	ID            string       `xml:"Id"`
	Status        codedValue   `xml:"Status"`
	Errors        []codedValue `xml:"Error"`
	OriginalMsgID struct {
		ID string `xml:"Id"`
	} `xml:"OriginalMsgId"`
}

// Parse reads an AppRec document, either bare or wrapped in EI_fellesformat.
func Parse(payload []byte) (models.Apprec, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return models.Apprec{}, fmt.Errorf("%w: no AppRec element", ErrParse)
			}
			return models.Apprec{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "AppRec" {
			continue
		}
		var doc appRecDocument
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return models.Apprec{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return doc.toApprec()
	}
}

func (d appRecDocument) toApprec() (models.Apprec, error) {
	apprecID, err := id.ParseMessageID(strings.TrimSpace(d.ID))
	if err != nil {
		return models.Apprec{}, fmt.Errorf("%w: apprec id: %v", ErrParse, err)
	}
	bestillingID, err := id.ParseMessageID(strings.TrimSpace(d.OriginalMsgID.ID))
	if err != nil {
		return models.Apprec{}, fmt.Errorf("%w: original message id: %v", ErrParse, err)
	}
	if d.Status.V == "" {
		return models.Apprec{}, fmt.Errorf("%w: missing status", ErrParse)
	}

	a := models.Apprec{
		UUID:           apprecID,
		BestillingUUID: bestillingID,
		StatusKode:     d.Status.V,
		StatusTekst:    d.Status.DN,
	}
	if len(d.Errors) > 0 {
		a.FeilKode = d.Errors[0].V
		a.FeilTekst = d.Errors[0].DN
	}
	return a, nil
}

// charsetReader decodes the legacy encodings some senders still declare,
// ISO-8859-1 and windows-1252 among them, using their WHATWG labels.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
