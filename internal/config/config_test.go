package config

import "testing"

func TestRequire(t *testing.T) {
	cfg := Config{}
	if err := cfg.Require("BLS_API_KEY", ""); err == nil {
		t.Fatal("expected error for empty value")
	}
	if err := cfg.Require("BLS_API_KEY", "   "); err == nil {
		t.Fatal("expected error for blank value")
	}
	if err := cfg.Require("BLS_API_KEY", "abc123"); err != nil {
		t.Fatalf("Require: %v", err)
	}
}

func TestRequiredYears(t *testing.T) {
	cfg := Config{RequiredStartYear: 2019, RequiredEndYear: 2022}
	got := cfg.RequiredYears()
	want := []int{2019, 2020, 2021, 2022}
	if len(got) != len(want) {
		t.Fatalf("RequiredYears() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RequiredYears() = %v, want %v", got, want)
		}
	}
}
