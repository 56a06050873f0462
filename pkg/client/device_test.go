package client

import (
	"testing"
)

func TestLoadOrCreateDeviceID_StableAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrCreateDeviceID(dir)
	if err != nil {
		t.Fatal(err)
	}
	if first == "" {
		t.Fatal("expected a device id")
	}

	second, err := LoadOrCreateDeviceID(dir)
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("expected stable identity, got %q then %q", first, second)
	}
}

func TestLoadOrCreateDeviceID_DistinctPerInstallation(t *testing.T) {
	a, err := LoadOrCreateDeviceID(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadOrCreateDeviceID(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("expected distinct identities per installation, both %q", a)
	}
}
