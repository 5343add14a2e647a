// Package ustvaxml assembles the advance VAT return document for the
// 2025 schema: the Elster envelope, the Nutzdaten header with the
// derived routing code, and the ordered Anmeldungssteuern body.
package ustvaxml

import (
	"errors"

	"tdp/internal/elsterxml"
	"tdp/internal/payload/ustva"
)

// Namespaces and versions fixed by the authority interface.
const (
	ElsterNS = "http://www.elster.de/elsterxml/schema/v11"
	UstvaNS  = "http://finkonsens.de/elster/elsteranmeldung/ustva/v2025"

	SchemaVersion = "2025"

	defaultHeaderVersion   = "11"
	defaultNutzdatenTicket = "1"
)

// ErrNoRecipient is returned when no candidate section yields a routing
// code; document assembly must abort rather than emit a partial header.
var ErrNoRecipient = errors.New("cannot derive recipient: no tax number with at least 4 digits in payload")

// Per-section tag mappings. Order matters: mapped keys are emitted in
// exactly this order.
var (
	datenLieferantMapping = elsterxml.Mapping{
		{Key: "name", Tag: "Name"},
		{Key: "strasse", Tag: "Strasse"},
		{Key: "plz", Tag: "PLZ"},
		{Key: "ort", Tag: "Ort"},
		{Key: "telefon", Tag: "Telefon"},
		{Key: "email", Tag: "Email"},
	}

	partyMapping = elsterxml.Mapping{
		{Key: "bezeichnung", Tag: "Bezeichnung"},
		{Key: "name", Tag: "Name"},
		{Key: "vorname", Tag: "Vorname"},
		{Key: "namensvorsatz", Tag: "Namensvorsatz"},
		{Key: "namenszusatz", Tag: "Namenszusatz"},
		{Key: "strasse", Tag: "Str"},
		{Key: "hausnummer", Tag: "Hausnummer"},
		{Key: "hnr_zusatz", Tag: "HNrZusatz"},
		{Key: "anschriften_zusatz", Tag: "AnschriftenZusatz"},
		{Key: "ort", Tag: "Ort"},
		{Key: "plz", Tag: "PLZ"},
		{Key: "auslands_plz", Tag: "AuslandsPLZ"},
		{Key: "land", Tag: "Land"},
		{Key: "postfach_ort", Tag: "PostfachOrt"},
		{Key: "postfach", Tag: "Postfach"},
		{Key: "postfach_plz", Tag: "PostfachPLZ"},
		{Key: "gk_plz", Tag: "GKPLZ"},
		{Key: "telefon", Tag: "Telefon"},
		{Key: "email", Tag: "Email"},
	}

	mandantMapping = elsterxml.Mapping{
		{Key: "name", Tag: "Name"},
		{Key: "vorname", Tag: "Vorname"},
		{Key: "mandanten_nr", Tag: "MandantenNr"},
		{Key: "bearbeiterkennzeichen", Tag: "Bearbeiterkennzeichen"},
	}

	voranmeldungMapping = elsterxml.Mapping{
		{Key: "jahr", Tag: "Jahr"},
		{Key: "zeitraum", Tag: "Zeitraum"},
		{Key: "steuernummer", Tag: "Steuernummer"},
		{Key: "w_id_nr", Tag: "WIdNr"},
	}

	dauerfristMapping = elsterxml.Mapping{
		{Key: "jahr", Tag: "Jahr"},
		{Key: "steuernummer", Tag: "Steuernummer"},
		{Key: "w_id_nr", Tag: "WIdNr"},
	}

	sondervorauszahlungMapping = elsterxml.Mapping{
		{Key: "jahr", Tag: "Jahr"},
		{Key: "steuernummer", Tag: "Steuernummer"},
		{Key: "w_id_nr", Tag: "WIdNr"},
	}

	eopMapping = elsterxml.Mapping{
		{Key: "transferaufgabe", Tag: "Transferaufgabe"},
	}
)

// Build renders the full declaration document for the payload.
func Build(p *ustva.Payload) (string, error) {
	root := elsterxml.NewElement("Elster").SetAttr("xmlns", ElsterNS)

	datenTeil := root.Add("DatenTeil")
	nutzdatenBlock := datenTeil.Add("Nutzdatenblock")

	headerVersion := p.NutzdatenHeaderVersion
	if headerVersion == "" {
		headerVersion = defaultHeaderVersion
	}
	nutzdatenHeader := nutzdatenBlock.Add("NutzdatenHeader").SetAttr("version", headerVersion)

	ticket := p.NutzdatenTicket
	if ticket == "" {
		ticket = defaultNutzdatenTicket
	}
	nutzdatenHeader.Add("NutzdatenTicket").Text = ticket

	empfaenger, err := DeriveEmpfaenger(p)
	if err != nil {
		return "", err
	}
	nutzdatenHeader.Add("Empfaenger").SetAttr("id", "F").Text = empfaenger

	if p.Hersteller != nil {
		herstellerElem := nutzdatenHeader.Add("Hersteller")
		if err := elsterxml.SerializeSection(herstellerElem, p.Hersteller.Record(), nil); err != nil {
			return "", err
		}
	}

	nutzdaten := nutzdatenBlock.Add("Nutzdaten")
	anmeldungssteuern := nutzdaten.Add("Anmeldungssteuern").
		SetAttr("xmlns", UstvaNS).
		SetAttr("version", SchemaVersion)

	if p.Erstellungsdatum != nil {
		anmeldungssteuern.Add("Erstellungsdatum").Text = p.Erstellungsdatum.Format("20060102")
	}

	if p.DatenLieferant != nil {
		elem := anmeldungssteuern.Add("DatenLieferant")
		if err := elsterxml.SerializeSection(elem, p.DatenLieferant.Record(), datenLieferantMapping); err != nil {
			return "", err
		}
	}

	if p.Steuerfall != nil {
		elem := anmeldungssteuern.Add("Steuerfall")
		if err := serializeSteuerfall(elem, p.Steuerfall); err != nil {
			return "", err
		}
	}

	if p.EOP != nil {
		elem := anmeldungssteuern.Add("EOP")
		if err := elsterxml.SerializeSection(elem, p.EOP.Record(), eopMapping); err != nil {
			return "", err
		}
	}

	return root.Render(), nil
}

// serializeSteuerfall emits the known declaration-kind sections in the
// authority's fixed order, then any leftover extra fields with
// default-derived tags.
func serializeSteuerfall(parent *elsterxml.Element, s *ustva.Steuerfall) error {
	type section struct {
		tag     string
		rec     *elsterxml.Record
		mapping elsterxml.Mapping
	}

	var sections []section
	if s.Berater != nil {
		sections = append(sections, section{"Berater", s.Berater.Record(), partyMapping})
	}
	if s.Mandant != nil {
		sections = append(sections, section{"Mandant", s.Mandant.Record(), mandantMapping})
	}
	if s.Unternehmer != nil {
		sections = append(sections, section{"Unternehmer", s.Unternehmer.Record(), partyMapping})
	}
	if s.Umsatzsteuervoranmeldung != nil {
		sections = append(sections, section{"Umsatzsteuervoranmeldung", s.Umsatzsteuervoranmeldung.Record(), voranmeldungMapping})
	}
	if s.Dauerfristverlaengerung != nil {
		sections = append(sections, section{"Dauerfristverlaengerung", s.Dauerfristverlaengerung.Record(), dauerfristMapping})
	}
	if s.Umsatzsteuersondervorauszahlung != nil {
		sections = append(sections, section{"Umsatzsteuersondervorauszahlung", s.Umsatzsteuersondervorauszahlung.Record(), sondervorauszahlungMapping})
	}

	for _, sec := range sections {
		elem := parent.Add(sec.tag)
		if err := elsterxml.SerializeSection(elem, sec.rec, sec.mapping); err != nil {
			return err
		}
	}

	if s.Extra.Len() > 0 {
		leftover := elsterxml.NewRecord()
		for _, f := range s.Extra.Fields() {
			leftover.Set(f.Key, f.Value)
		}
		if err := elsterxml.SerializeSection(parent, leftover, nil); err != nil {
			return err
		}
	}

	return nil
}

// DeriveEmpfaenger resolves the routing code for the document header.
// An explicit value wins; otherwise the candidate sections are scanned
// in fixed order for a tax number whose digits yield a 4-digit code.
func DeriveEmpfaenger(p *ustva.Payload) (string, error) {
	if p.Empfaenger != "" {
		return p.Empfaenger, nil
	}

	var candidates []*string
	if p.Steuerfall != nil {
		if v := p.Steuerfall.Umsatzsteuervoranmeldung; v != nil {
			candidates = append(candidates, v.Steuernummer)
		}
		if d := p.Steuerfall.Dauerfristverlaengerung; d != nil {
			candidates = append(candidates, d.Steuernummer)
		}
		if s := p.Steuerfall.Umsatzsteuersondervorauszahlung; s != nil {
			candidates = append(candidates, s.Steuernummer)
		}
	}

	for _, candidate := range candidates {
		if candidate == nil || *candidate == "" {
			continue
		}
		digits := make([]byte, 0, len(*candidate))
		for i := 0; i < len(*candidate); i++ {
			if c := (*candidate)[i]; c >= '0' && c <= '9' {
				digits = append(digits, c)
			}
		}
		if len(digits) >= 4 {
			return string(digits[:4]), nil
		}
	}

	return "", ErrNoRecipient
}
