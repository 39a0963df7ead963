package cardhash

import (
	"testing"

	"github.com/polkiloo/routeshop/internal/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestArgon2HasherDeterministic(t *testing.T) {
	h := NewArgon2Hasher("pepper")

	first := h.Hash("4111111111111111")
	second := h.Hash("4111111111111111")
	if first != second {
		t.Fatalf("expected equal digests, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 32 byte hex digest, got %d chars", len(first))
	}
	if first == "4111111111111111" {
		t.Fatal("digest must not equal the card number")
	}
}

func TestArgon2HasherDistinguishesInputs(t *testing.T) {
	h := NewArgon2Hasher("pepper")
	if h.Hash("4111111111111111") == h.Hash("5555555555554444") {
		t.Fatal("different cards produced equal digests")
	}

	other := NewArgon2Hasher("another")
	if h.Hash("4111111111111111") == other.Hash("4111111111111111") {
		t.Fatal("pepper must change the digest")
	}
}

func TestModuleProvidesHasher(t *testing.T) {
	var hasher Hasher
	app := fxtest.New(t,
		fx.Supply(&config.Config{CardPepper: "pepper"}),
		Module,
		fx.Populate(&hasher),
	)
	app.RequireStart()
	defer app.RequireStop()

	if hasher.Hash("1") != NewArgon2Hasher("pepper").Hash("1") {
		t.Fatal("module hasher must use configured pepper")
	}
}
