package nexus

import (
	"encoding/json"
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("id", "x1")
		w.Append("type", Acquire)
		w.Append("amount", M(1000))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"id":"x1","type":"ACQUIRE","amount":1000}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional skips zero values", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("quantity", 0)
		w.Optional("note", "")
		w.Optional("portfolioId", Trading)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"quantity":0,"portfolioId":"trading"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("embed then append", func(t *testing.T) {
		var w jsonObjectWriter
		w.Embed(json.RawMessage(`{"id":"x1","type":"DISPOSE"}`))
		w.Append("realizedProfit", M(100))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"id":"x1","type":"DISPOSE","realizedProfit":100}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("marshal error is kept", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("type", Kind(42))
		w.Append("id", "x1")
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("expected an error for an unknown kind")
		}
	})
}
