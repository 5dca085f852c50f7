package comp

import "testing"

func TestMustParseDecimal_RoundTrip(t *testing.T) {
	v := MustParseDecimal(d(123.45).String())
	if !v.Equal(d(123.45)) {
		t.Errorf("expected 123.45, got %v", v)
	}
}

func TestMustParseDecimal_PanicsOnCorruptValue(t *testing.T) {
	// A stored amount that fails to parse must not become $0.
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unparseable decimal")
		}
	}()
	MustParseDecimal("not-a-number")
}
