package password

import "testing"

func TestHashVerify(t *testing.T) {
	hash, err := Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !IsBcryptHash(hash) {
		t.Errorf("unexpected hash format: %q", hash)
	}

	ok, err := Verify(hash, "correct-horse-battery")
	if err != nil || !ok {
		t.Errorf("correct password: ok=%v err=%v", ok, err)
	}
	ok, err = Verify(hash, "wrong-password")
	if err != nil {
		t.Errorf("mismatch is not an error: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestVerifyGarbageHash(t *testing.T) {
	ok, err := Verify("not-a-bcrypt-hash", "whatever")
	if ok {
		t.Error("garbage hash verified")
	}
	if err == nil {
		t.Error("garbage hash did not report an error")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("short"); err == nil {
		t.Error("7-char password accepted")
	}
	if err := Validate("12345678"); err != nil {
		t.Errorf("8-char password rejected: %v", err)
	}
	if _, err := Hash("short"); err == nil {
		t.Error("Hash accepted a password failing policy")
	}
}

func TestIsBcryptHash(t *testing.T) {
	for _, h := range []string{"$2a$10$abc", "$2b$12$abc", "$2y$10$abc"} {
		if !IsBcryptHash(h) {
			t.Errorf("%q not detected as bcrypt", h)
		}
	}
	for _, h := range []string{"", "plaintext", "$argon2id$v=19$..."} {
		if IsBcryptHash(h) {
			t.Errorf("%q detected as bcrypt", h)
		}
	}
}
