package plugin

import "testing"

func TestRegisterLookup(t *testing.T) {
	name := "test-device-registry-register-lookup"
	if err := Register(name, func(instance string) (interface{}, error) { return instance, nil }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	f, ok := Lookup(name)
	if !ok {
		t.Fatal("Lookup did not find the registered factory")
	}
	v, err := f("inst0")
	if err != nil || v != "inst0" {
		t.Fatalf("factory(%q) = %v, %v", "inst0", v, err)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	name := "test-device-registry-duplicate"
	fac := func(instance string) (interface{}, error) { return nil, nil }
	if err := Register(name, fac); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := Register(name, fac); err == nil {
		t.Fatal("second Register for the same name should have failed")
	}
}
