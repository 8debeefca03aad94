package config

import "testing"

func TestLookup(t *testing.T) {
	t.Setenv("K1", "one")
	t.Setenv("K3", "three")

	Set("K1", "1")
	defer Unset("K1")

	if got := Lookup("K1"); got != "1" {
		t.Errorf("Lookup(K1) = %q, want %q (override wins)", got, "1")
	}
	if got := Lookup("K2"); got != "" {
		t.Errorf("Lookup(K2) = %q, want empty", got)
	}
	if got := Lookup("K3"); got != "three" {
		t.Errorf("Lookup(K3) = %q, want %q", got, "three")
	}

	Unset("K1")
	if got := Lookup("K1"); got != "one" {
		t.Errorf("Lookup(K1) = %q, want %q (env after Unset)", got, "one")
	}
}
