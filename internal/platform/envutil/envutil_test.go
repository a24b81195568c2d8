package envutil

import (
	"testing"
	"time"
)

func TestEnvParsing(t *testing.T) {
	t.Setenv("EU_INT", "42")
	t.Setenv("EU_BAD_INT", "x")
	t.Setenv("EU_BOOL", "off")
	t.Setenv("EU_LIST", " a, ,b ")
	t.Setenv("EU_SECS", "30")

	if got := Int("EU_INT", 1); got != 42 {
		t.Fatalf("Int: got=%d", got)
	}
	if got := Int("EU_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if Bool("EU_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	if !Bool("EU_MISSING", true) {
		t.Fatalf("Bool default: expected true")
	}
	if got := List("EU_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
	if got := Seconds("EU_SECS", time.Minute); got != 30*time.Second {
		t.Fatalf("Seconds: got=%s", got)
	}
	if got := String("EU_MISSING", "def"); got != "def" {
		t.Fatalf("String default: got=%q", got)
	}
}
