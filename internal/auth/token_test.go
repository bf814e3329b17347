package auth

import "testing"

func TestHashAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("s3cret-admin-token")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	if !VerifyToken("s3cret-admin-token", hash) {
		t.Fatalf("expected token to verify against its own hash")
	}
	if VerifyToken("wrong-token", hash) {
		t.Fatalf("did not expect wrong token to verify")
	}
}

func TestVerifyToken_EmptyInputs(t *testing.T) {
	t.Parallel()

	if VerifyToken("", "some-hash") {
		t.Fatalf("empty token must not verify")
	}
	if VerifyToken("token", "") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestHashToken_Empty(t *testing.T) {
	t.Parallel()

	if _, err := HashToken("  "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}
