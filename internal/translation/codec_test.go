package translation

import (
	"reflect"
	"testing"
)

func TestEncodeWrapsEachText(t *testing.T) {
	got := Encode([]string{" I wake up.", " But I know."})
	want := "[ I wake up.][ But I know.]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDecodeSplitsOnBracketRuns(t *testing.T) {
	got := Decode("[Я просыпаюсь.][Но я знаю.]")
	want := []string{"Я просыпаюсь.", "Но я знаю."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDecodeToleratesUnbalancedBrackets(t *testing.T) {
	got := Decode("[first][second")
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRoundTripPreservesSegmentCount(t *testing.T) {
	texts := []string{"one.", "two, with comma", "three?"}
	decoded := Decode(Encode(texts))
	if !reflect.DeepEqual(decoded, texts) {
		t.Fatalf("round trip changed texts: %v", decoded)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := Decode(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := Decode("[]"); got != nil {
		t.Fatalf("expected nil for empty span, got %v", got)
	}
}
