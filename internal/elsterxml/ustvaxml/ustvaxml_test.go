package ustvaxml

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"tdp/internal/payload/ustva"
)

const samplePayload = `{
	"erstellungsdatum": "2025-01-05",
	"daten_lieferant": {
		"name": "Muster Steuerberatung",
		"strasse": "Hauptstr. 1",
		"plz": "10115",
		"ort": "Berlin"
	},
	"hersteller": {
		"produkt_name": "tdp",
		"produkt_version": "1.0"
	},
	"steuerfall": {
		"unternehmer": {
			"name": "Muster",
			"vorname": "Max",
			"strasse": "Musterweg 2",
			"plz": "10115",
			"ort": "Berlin"
		},
		"umsatzsteuervoranmeldung": {
			"jahr": 2025,
			"zeitraum": "01",
			"steuernummer": "1096081508187",
			"kz35": 1600.00,
			"kz36": 304,
			"kz09": true
		}
	},
	"eop": {
		"transferaufgabe": "UStVA"
	}
}`

func parsePayload(t *testing.T, data string) *ustva.Payload {
	t.Helper()
	var p ustva.Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return &p
}

func TestBuild(t *testing.T) {
	p := parsePayload(t, samplePayload)

	doc, err := Build(p)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	wantFragments := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<Elster xmlns="` + ElsterNS + `">`,
		`<NutzdatenHeader version="11">`,
		`<NutzdatenTicket>1</NutzdatenTicket>`,
		`<Empfaenger id="F">1096</Empfaenger>`,
		`<Hersteller><ProduktName>tdp</ProduktName><ProduktVersion>1.0</ProduktVersion></Hersteller>`,
		`<Anmeldungssteuern xmlns="` + UstvaNS + `" version="2025">`,
		`<Erstellungsdatum>20250105</Erstellungsdatum>`,
		`<Strasse>Hauptstr. 1</Strasse>`,
		// Party sections use the short street tag.
		`<Str>Musterweg 2</Str>`,
		`<Jahr>2025</Jahr>`,
		`<Zeitraum>01</Zeitraum>`,
		`<Steuernummer>1096081508187</Steuernummer>`,
		// Decimal form-line values keep their literal precision.
		`<Kz35>1600.00</Kz35>`,
		`<Kz36>304</Kz36>`,
		// Booleans collapse to the authority's flag form.
		`<Kz09>1</Kz09>`,
		`<EOP><Transferaufgabe>UStVA</Transferaufgabe></EOP>`,
	}

	for _, fragment := range wantFragments {
		if !strings.Contains(doc, fragment) {
			t.Errorf("document missing %q\n%s", fragment, doc)
		}
	}

	// Mapped fields come before the unmapped form-line codes.
	if strings.Index(doc, "<Steuernummer>") > strings.Index(doc, "<Kz35>") {
		t.Error("Steuernummer should precede Kz35")
	}
}

// xmlNode is a generic tree view for re-parsing built documents.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func (n *xmlNode) find(tag string) *xmlNode {
	if n.XMLName.Local == tag {
		return n
	}
	for i := range n.Children {
		if found := n.Children[i].find(tag); found != nil {
			return found
		}
	}
	return nil
}

func TestBuildRoundTripsThroughXMLParser(t *testing.T) {
	p := parsePayload(t, samplePayload)

	doc, err := Build(p)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	var root xmlNode
	if err := xml.Unmarshal([]byte(doc), &root); err != nil {
		t.Fatalf("built document is not well-formed: %v", err)
	}

	voranmeldung := root.find("Umsatzsteuervoranmeldung")
	if voranmeldung == nil {
		t.Fatal("Umsatzsteuervoranmeldung element missing")
	}

	// Every input field comes back under its own distinct tag; mapped
	// and default-derived tags must not collide.
	got := make(map[string]string, len(voranmeldung.Children))
	for _, child := range voranmeldung.Children {
		tag := child.XMLName.Local
		if _, dup := got[tag]; dup {
			t.Fatalf("duplicate tag %q in Umsatzsteuervoranmeldung", tag)
		}
		got[tag] = child.Text
	}

	want := map[string]string{
		"Jahr":         "2025",
		"Zeitraum":     "01",
		"Steuernummer": "1096081508187",
		"Kz35":         "1600.00",
		"Kz36":         "304",
		"Kz09":         "1",
	}
	if len(got) != len(want) {
		t.Errorf("recovered fields = %v, want %v", got, want)
	}
	for tag, text := range want {
		if got[tag] != text {
			t.Errorf("recovered %s = %q, want %q", tag, got[tag], text)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	p := parsePayload(t, samplePayload)

	first, err := Build(p)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	second, err := Build(p)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if first != second {
		t.Error("two builds of the same payload differ")
	}
}

func TestBuildWithoutRecipient(t *testing.T) {
	p := parsePayload(t, `{"steuerfall": {"umsatzsteuervoranmeldung": {"jahr": 2025}}}`)

	if _, err := Build(p); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("Build error = %v, want ErrNoRecipient", err)
	}
}

func TestDeriveEmpfaenger(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{
			name:    "explicit value wins",
			payload: `{"empfaenger": "9999", "steuerfall": {"umsatzsteuervoranmeldung": {"steuernummer": "1096081508187"}}}`,
			want:    "9999",
		},
		{
			name:    "from voranmeldung tax number",
			payload: `{"steuerfall": {"umsatzsteuervoranmeldung": {"steuernummer": "1096081508187"}}}`,
			want:    "1096",
		},
		{
			name:    "non-digits stripped first",
			payload: `{"steuerfall": {"umsatzsteuervoranmeldung": {"steuernummer": "10/960/81508"}}}`,
			want:    "1096",
		},
		{
			name:    "dauerfrist as fallback",
			payload: `{"steuerfall": {"dauerfristverlaengerung": {"steuernummer": "2893081508152"}}}`,
			want:    "2893",
		},
		{
			name:    "sondervorauszahlung as fallback",
			payload: `{"steuerfall": {"umsatzsteuersondervorauszahlung": {"steuernummer": "5133081508159"}}}`,
			want:    "5133",
		},
		{
			name:    "too few digits",
			payload: `{"steuerfall": {"umsatzsteuervoranmeldung": {"steuernummer": "1/2-3"}}}`,
			wantErr: true,
		},
		{
			name:    "no candidates",
			payload: `{"steuerfall": {"unternehmer": {"name": "Muster"}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parsePayload(t, tt.payload)

			got, err := DeriveEmpfaenger(p)
			if tt.wantErr {
				if !errors.Is(err, ErrNoRecipient) {
					t.Fatalf("DeriveEmpfaenger error = %v, want ErrNoRecipient", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveEmpfaenger error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeriveEmpfaenger = %q, want %q", got, tt.want)
			}
		})
	}
}
