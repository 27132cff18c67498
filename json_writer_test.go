package varlik

import "testing"

func TestJsonObjectWriter_PreservesFieldOrder(t *testing.T) {
	var w jsonObjectWriter
	w.Append("b", 2)
	w.Append("a", 1)
	w.Append("c", "three")
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"b":2,"a":1,"c":"three"}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Optional(t *testing.T) {
	var w jsonObjectWriter
	w.Append("id", "x")
	w.Optional("currency", "")
	w.Optional("note", "set")
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"id":"x","note":"set"}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_EmbedFrom(t *testing.T) {
	var w jsonObjectWriter
	w.Append("id", "x")
	w.EmbedFrom(PositionKey{Class: ClassStock, Symbol: "THYAO", Platform: "midas"})
	w.Append("quantity", 1)
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"x","class":"stock","symbol":"THYAO","platform":"midas","quantity":1}`
	if string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Empty(t *testing.T) {
	var w jsonObjectWriter
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `{}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}
