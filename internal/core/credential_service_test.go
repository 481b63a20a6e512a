package core

import (
	"errors"
	"testing"

	"attendance.service/internal/ports/credential"
)

func TestGuardBootstrapsDefaultSecret(t *testing.T) {
	guard := NewCredentialGuard(credential.NewMemoryStore())

	// First verification against an empty store triggers the bootstrap.
	ok, err := guard.Verify(DefaultAdminSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("default secret rejected on fresh install")
	}

	ok, err = guard.Verify("wrong")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestGuardRotateReplacesCredential(t *testing.T) {
	guard := NewCredentialGuard(credential.NewMemoryStore())
	if err := guard.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if err := guard.Rotate("newpass"); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if ok, _ := guard.Verify("admin"); ok {
		t.Fatal("old default still accepted after rotation")
	}
	if ok, _ := guard.Verify("newpass"); !ok {
		t.Fatal("new password rejected after rotation")
	}
}

func TestGuardBootstrapKeepsExistingCredential(t *testing.T) {
	store := credential.NewMemoryStore()
	guard := NewCredentialGuard(store)

	if err := guard.Rotate("already-set"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if err := guard.Bootstrap(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if ok, _ := guard.Verify("already-set"); !ok {
		t.Fatal("bootstrap overwrote an existing credential")
	}
	if ok, _ := guard.Verify(DefaultAdminSecret); ok {
		t.Fatal("bootstrap reset credential to the default")
	}
}

// corruptStore simulates an unreadable credential file.
type corruptStore struct{}

func (corruptStore) Load() (string, error) { return "", credential.ErrCorrupt }
func (corruptStore) Save(string) error     { return nil }

func TestGuardCorruptStoreIsFatal(t *testing.T) {
	guard := NewCredentialGuard(corruptStore{})

	_, err := guard.Verify("anything")
	if err == nil {
		t.Fatal("corrupt credential store did not surface an error")
	}
	if !errors.Is(err, credential.ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}

	if err := guard.Bootstrap(); err == nil {
		t.Fatal("bootstrap silently replaced a corrupt credential")
	}
}
