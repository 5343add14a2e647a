package ustva

import (
	"encoding/json"
	"testing"

	"tdp/internal/elsterxml"
)

func TestVoranmeldungExtrasKeepInputOrder(t *testing.T) {
	data := `{
		"kz66": 100,
		"jahr": 2025,
		"kz35": 1600.00,
		"zeitraum": "01",
		"kz36": 304,
		"steuernummer": "1096081508187"
	}`

	var v Voranmeldung
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v.Jahr == nil || *v.Jahr != 2025 {
		t.Errorf("Jahr = %v, want 2025", v.Jahr)
	}
	if v.Zeitraum == nil || *v.Zeitraum != "01" {
		t.Errorf("Zeitraum = %v, want 01", v.Zeitraum)
	}

	got := make([]string, 0, v.Extra.Len())
	for _, f := range v.Extra.Fields() {
		got = append(got, f.Key)
	}
	want := []string{"kz66", "kz35", "kz36"}
	if len(got) != len(want) {
		t.Fatalf("extras = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("extras = %v, want %v", got, want)
		}
	}
}

func TestDecimalLiteralSurvivesDecoding(t *testing.T) {
	var v Voranmeldung
	if err := json.Unmarshal([]byte(`{"kz35": 1600.00}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	parent := elsterxml.NewElement("Umsatzsteuervoranmeldung")
	if err := elsterxml.SerializeSection(parent, v.Record(), nil); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if len(parent.Children) != 1 || parent.Children[0].Text != "1600.00" {
		t.Errorf("serialized kz35 = %+v, want text 1600.00", parent.Children)
	}
}

func TestNullFieldsAreDropped(t *testing.T) {
	var v Voranmeldung
	if err := json.Unmarshal([]byte(`{"jahr": null, "kz35": null, "kz36": 1}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if v.Jahr != nil {
		t.Errorf("Jahr = %v, want nil", v.Jahr)
	}
	if v.Extra.Len() != 1 || v.Extra.Fields()[0].Key != "kz36" {
		t.Errorf("extras = %v, want only kz36", v.Extra.Fields())
	}
}

func TestNestedExtraObjects(t *testing.T) {
	var s Steuerfall
	data := `{
		"umsatzsteuervoranmeldung": {"jahr": 2025},
		"anlage": {"posten": ["a", "b"], "betrag": 1.50}
	}`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if s.Umsatzsteuervoranmeldung == nil {
		t.Fatal("known section not decoded")
	}
	if s.Extra.Len() != 1 {
		t.Fatalf("extras = %v, want one entry", s.Extra.Fields())
	}

	extra := s.Extra.Fields()[0]
	if extra.Key != "anlage" || extra.Value.Kind() != elsterxml.KindRecord {
		t.Fatalf("extra = %+v, want record under anlage", extra)
	}

	betrag, ok := extra.Value.Record().Get("betrag")
	if !ok || betrag.Kind() != elsterxml.KindDecimal {
		t.Errorf("betrag = %+v, want decimal", betrag)
	}
	posten, ok := extra.Value.Record().Get("posten")
	if !ok || posten.Kind() != elsterxml.KindList || len(posten.Items()) != 2 {
		t.Errorf("posten = %+v, want two-item list", posten)
	}
}

func TestPayloadValidate(t *testing.T) {
	var p Payload
	if err := json.Unmarshal([]byte(`{"empfaenger": "9999"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := p.Validate(); err == nil {
		t.Error("payload without steuerfall should fail validation")
	}

	var ok Payload
	if err := json.Unmarshal([]byte(`{"steuerfall": {}}`), &ok); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestDateUnmarshal(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-01-05"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Format("20060102") != "20250105" {
		t.Errorf("date = %s, want 20250105", d.Format("20060102"))
	}

	if err := json.Unmarshal([]byte(`"05.01.2025"`), &d); err == nil {
		t.Error("non-ISO date should fail")
	}
}
