// Package ustva holds the structured payload of an advance VAT return
// (Umsatzsteuervoranmeldung) submission. Every field is optional unless
// noted; sections accept arbitrary extra fields which are preserved in
// input order through serialization.
package ustva

import (
	"encoding/json"
	"fmt"
	"time"

	"tdp/internal/elsterxml"
)

// Date is a calendar date decoded from ISO "2006-01-02" JSON strings.
type Date struct {
	time.Time
}

// UnmarshalJSON parses an ISO date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Hersteller identifies the producing software.
type Hersteller struct {
	ProduktName    *string
	ProduktVersion *string
	Extra          Extras
}

func (h *Hersteller) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"produkt_name":    setString(&h.ProduktName),
		"produkt_version": setString(&h.ProduktVersion),
	}, &h.Extra)
}

// Record flattens the section into ordered codec fields.
func (h *Hersteller) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setStr(rec, "produkt_name", h.ProduktName)
	setStr(rec, "produkt_version", h.ProduktVersion)
	h.Extra.addTo(rec)
	return rec
}

// DatenLieferant identifies the data supplier.
type DatenLieferant struct {
	Name    *string
	Strasse *string
	PLZ     *string
	Ort     *string
	Telefon *string
	Email   *string
	Extra   Extras
}

func (d *DatenLieferant) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"name":    setString(&d.Name),
		"strasse": setString(&d.Strasse),
		"plz":     setString(&d.PLZ),
		"ort":     setString(&d.Ort),
		"telefon": setString(&d.Telefon),
		"email":   setString(&d.Email),
	}, &d.Extra)
}

func (d *DatenLieferant) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setStr(rec, "name", d.Name)
	setStr(rec, "strasse", d.Strasse)
	setStr(rec, "plz", d.PLZ)
	setStr(rec, "ort", d.Ort)
	setStr(rec, "telefon", d.Telefon)
	setStr(rec, "email", d.Email)
	d.Extra.addTo(rec)
	return rec
}

// Party is the address/name block shared by Berater and Unternehmer.
type Party struct {
	Bezeichnung       *string
	Name              *string
	Vorname           *string
	Namensvorsatz     *string
	Namenszusatz      *string
	Strasse           *string
	Hausnummer        *string
	HNrZusatz         *string
	AnschriftenZusatz *string
	Ort               *string
	PLZ               *string
	AuslandsPLZ       *string
	Land              *string
	PostfachOrt       *string
	Postfach          *string
	PostfachPLZ       *string
	GKPLZ             *string
	Telefon           *string
	Email             *string
	Extra             Extras
}

func (p *Party) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"bezeichnung":        setString(&p.Bezeichnung),
		"name":               setString(&p.Name),
		"vorname":            setString(&p.Vorname),
		"namensvorsatz":      setString(&p.Namensvorsatz),
		"namenszusatz":       setString(&p.Namenszusatz),
		"strasse":            setString(&p.Strasse),
		"hausnummer":         setString(&p.Hausnummer),
		"hnr_zusatz":         setString(&p.HNrZusatz),
		"anschriften_zusatz": setString(&p.AnschriftenZusatz),
		"ort":                setString(&p.Ort),
		"plz":                setString(&p.PLZ),
		"auslands_plz":       setString(&p.AuslandsPLZ),
		"land":               setString(&p.Land),
		"postfach_ort":       setString(&p.PostfachOrt),
		"postfach":           setString(&p.Postfach),
		"postfach_plz":       setString(&p.PostfachPLZ),
		"gk_plz":             setString(&p.GKPLZ),
		"telefon":            setString(&p.Telefon),
		"email":              setString(&p.Email),
	}, &p.Extra)
}

func (p *Party) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setStr(rec, "bezeichnung", p.Bezeichnung)
	setStr(rec, "name", p.Name)
	setStr(rec, "vorname", p.Vorname)
	setStr(rec, "namensvorsatz", p.Namensvorsatz)
	setStr(rec, "namenszusatz", p.Namenszusatz)
	setStr(rec, "strasse", p.Strasse)
	setStr(rec, "hausnummer", p.Hausnummer)
	setStr(rec, "hnr_zusatz", p.HNrZusatz)
	setStr(rec, "anschriften_zusatz", p.AnschriftenZusatz)
	setStr(rec, "ort", p.Ort)
	setStr(rec, "plz", p.PLZ)
	setStr(rec, "auslands_plz", p.AuslandsPLZ)
	setStr(rec, "land", p.Land)
	setStr(rec, "postfach_ort", p.PostfachOrt)
	setStr(rec, "postfach", p.Postfach)
	setStr(rec, "postfach_plz", p.PostfachPLZ)
	setStr(rec, "gk_plz", p.GKPLZ)
	setStr(rec, "telefon", p.Telefon)
	setStr(rec, "email", p.Email)
	p.Extra.addTo(rec)
	return rec
}

// Mandant identifies the advisor's client.
type Mandant struct {
	Name                  *string
	Vorname               *string
	MandantenNr           *string
	Bearbeiterkennzeichen *string
	Extra                 Extras
}

func (m *Mandant) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"name":                  setString(&m.Name),
		"vorname":               setString(&m.Vorname),
		"mandanten_nr":          setString(&m.MandantenNr),
		"bearbeiterkennzeichen": setString(&m.Bearbeiterkennzeichen),
	}, &m.Extra)
}

func (m *Mandant) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setStr(rec, "name", m.Name)
	setStr(rec, "vorname", m.Vorname)
	setStr(rec, "mandanten_nr", m.MandantenNr)
	setStr(rec, "bearbeiterkennzeichen", m.Bearbeiterkennzeichen)
	m.Extra.addTo(rec)
	return rec
}

// Voranmeldung is the advance VAT return itself. The form-line codes
// (kz09, kz35, ...) arrive as extra fields.
type Voranmeldung struct {
	Jahr         *int64
	Zeitraum     *string
	Steuernummer *string
	WIdNr        *string
	Extra        Extras
}

func (v *Voranmeldung) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"jahr":         setInt(&v.Jahr),
		"zeitraum":     setString(&v.Zeitraum),
		"steuernummer": setString(&v.Steuernummer),
		"w_id_nr":      setString(&v.WIdNr),
	}, &v.Extra)
}

func (v *Voranmeldung) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setNum(rec, "jahr", v.Jahr)
	setStr(rec, "zeitraum", v.Zeitraum)
	setStr(rec, "steuernummer", v.Steuernummer)
	setStr(rec, "w_id_nr", v.WIdNr)
	v.Extra.addTo(rec)
	return rec
}

// Dauerfristverlaengerung is the permanent filing-deadline extension.
type Dauerfristverlaengerung struct {
	Jahr         *int64
	Steuernummer *string
	WIdNr        *string
	Extra        Extras
}

func (d *Dauerfristverlaengerung) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"jahr":         setInt(&d.Jahr),
		"steuernummer": setString(&d.Steuernummer),
		"w_id_nr":      setString(&d.WIdNr),
	}, &d.Extra)
}

func (d *Dauerfristverlaengerung) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setNum(rec, "jahr", d.Jahr)
	setStr(rec, "steuernummer", d.Steuernummer)
	setStr(rec, "w_id_nr", d.WIdNr)
	d.Extra.addTo(rec)
	return rec
}

// Sondervorauszahlung is the special advance payment declaration.
type Sondervorauszahlung struct {
	Jahr         *int64
	Steuernummer *string
	WIdNr        *string
	Extra        Extras
}

func (s *Sondervorauszahlung) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"jahr":         setInt(&s.Jahr),
		"steuernummer": setString(&s.Steuernummer),
		"w_id_nr":      setString(&s.WIdNr),
	}, &s.Extra)
}

func (s *Sondervorauszahlung) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setNum(rec, "jahr", s.Jahr)
	setStr(rec, "steuernummer", s.Steuernummer)
	setStr(rec, "w_id_nr", s.WIdNr)
	s.Extra.addTo(rec)
	return rec
}

// EOP is the end-of-procedure block.
type EOP struct {
	Transferaufgabe *string
	Extra           Extras
}

func (e *EOP) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"transferaufgabe": setString(&e.Transferaufgabe),
	}, &e.Extra)
}

func (e *EOP) Record() *elsterxml.Record {
	rec := elsterxml.NewRecord()
	setStr(rec, "transferaufgabe", e.Transferaufgabe)
	e.Extra.addTo(rec)
	return rec
}

// Steuerfall groups the declaration-kind sections. Exactly which
// sub-sections are present decides the routing code derivation.
type Steuerfall struct {
	Berater                         *Party
	Mandant                         *Mandant
	Unternehmer                     *Party
	Umsatzsteuervoranmeldung        *Voranmeldung
	Dauerfristverlaengerung         *Dauerfristverlaengerung
	Umsatzsteuersondervorauszahlung *Sondervorauszahlung
	Extra                           Extras
}

func (s *Steuerfall) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"berater":                         setObject(&s.Berater),
		"mandant":                         setObject(&s.Mandant),
		"unternehmer":                     setObject(&s.Unternehmer),
		"umsatzsteuervoranmeldung":        setObject(&s.Umsatzsteuervoranmeldung),
		"dauerfristverlaengerung":         setObject(&s.Dauerfristverlaengerung),
		"umsatzsteuersondervorauszahlung": setObject(&s.Umsatzsteuersondervorauszahlung),
	}, &s.Extra)
}

// Payload is the full submission payload. Steuerfall is the one
// mandatory section.
type Payload struct {
	Erstellungsdatum       *Date
	DatenLieferant         *DatenLieferant
	Steuerfall             *Steuerfall
	EOP                    *EOP
	Hersteller             *Hersteller
	NutzdatenTicket        string
	NutzdatenHeaderVersion string
	Empfaenger             string
	UseTestmerker          *bool
	Extra                  Extras
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	return decodeObject(data, map[string]setter{
		"erstellungsdatum":         setDate(&p.Erstellungsdatum),
		"daten_lieferant":          setObject(&p.DatenLieferant),
		"steuerfall":               setObject(&p.Steuerfall),
		"eop":                      setObject(&p.EOP),
		"hersteller":               setObject(&p.Hersteller),
		"nutzdaten_ticket":         setPlainString(&p.NutzdatenTicket),
		"nutzdaten_header_version": setPlainString(&p.NutzdatenHeaderVersion),
		"empfaenger":               setPlainString(&p.Empfaenger),
		"use_testmerker":           setBool(&p.UseTestmerker),
	}, &p.Extra)
}

// Validate checks the minimal shape a submission must have before it is
// queued; field-level tax correctness is out of scope.
func (p *Payload) Validate() error {
	if p.Steuerfall == nil {
		return fmt.Errorf("ustva: steuerfall is required")
	}
	return nil
}

func setStr(rec *elsterxml.Record, key string, v *string) {
	if v != nil {
		rec.Set(key, elsterxml.String(*v))
	}
}

func setNum(rec *elsterxml.Record, key string, v *int64) {
	if v != nil {
		rec.Set(key, elsterxml.Int(*v))
	}
}
