package auth

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, 42, "0042", "Waiter")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.EmployeeID != "0042" {
		t.Errorf("EmployeeID = %q, want %q", claims.EmployeeID, "0042")
	}
	if claims.Role != "Waiter" {
		t.Errorf("Role = %q, want %q", claims.Role, "Waiter")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, "0001", "Admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidateToken("secret-b", token); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not.a.token"); err == nil {
		t.Fatal("expected error for malformed token, got nil")
	}
}

func TestValidateToken_TamperedToken(t *testing.T) {
	token, err := GenerateToken("secret", 1, "0001", "Cashier")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format: %q", token)
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]
	if _, err := ValidateToken("secret", tampered); err == nil {
		t.Fatal("expected error for tampered signature, got nil")
	}
}
