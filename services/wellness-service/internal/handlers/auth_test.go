package handlers

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}
	if err := verifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("verifyPassword rejected the right password: %v", err)
	}
	if err := verifyPassword(hash, "wrong password"); err == nil {
		t.Fatal("verifyPassword accepted the wrong password")
	}
}
