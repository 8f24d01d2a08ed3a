package mockwire

import (
	"testing"
)

func TestEnvelope_Verify(t *testing.T) {
	payload := []byte("encoded proxy state")
	env := &Envelope{Payload: payload, Digest: digest(payload)}

	if !env.Verify() {
		t.Error("untouched envelope should verify")
	}

	env.Payload = append(env.Payload, 'x')
	if env.Verify() {
		t.Error("modified payload should fail verification")
	}
}

func TestEnvelope_VerifyEmptyPayload(t *testing.T) {
	env := &Envelope{Payload: nil, Digest: digest(nil)}
	if !env.Verify() {
		t.Error("empty payload with matching digest should verify")
	}

	if (&Envelope{}).Verify() {
		t.Error("missing digest should fail verification")
	}
}

func TestDigest_Stable(t *testing.T) {
	a := digest([]byte("same bytes"))
	b := digest([]byte("same bytes"))
	if string(a) != string(b) {
		t.Error("digest must be deterministic")
	}
	if len(a) != 32 {
		t.Errorf("digest length = %d, want 32", len(a))
	}
}
