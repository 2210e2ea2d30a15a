package auth

import (
	"testing"
	"time"
)

func TestAuthority(t *testing.T) {
	if got := Authority("ADMIN"); got != "ROLE_ADMIN" {
		t.Fatalf("unexpected authority: %s", got)
	}
}

func TestPrincipalAuthorities(t *testing.T) {
	p := NewPrincipal("john@company.com", []string{"USER", "ADMIN"})

	if !p.HasAuthority("ROLE_USER") || !p.HasAuthority("ROLE_ADMIN") {
		t.Fatal("expected both role authorities to be granted")
	}
	if p.HasAuthority("ROLE_AUDITOR") {
		t.Fatal("unexpected authority granted")
	}
	if p.HasAuthority("USER") {
		t.Fatal("bare role name must not match an authority")
	}
	if !p.HasAnyRole("AUDITOR", "ADMIN") {
		t.Fatal("expected HasAnyRole to match ADMIN")
	}
	if p.HasAnyRole("AUDITOR") {
		t.Fatal("expected HasAnyRole to miss")
	}
}

func TestEvaluatorAuthenticate(t *testing.T) {
	codec := newTestCodec(t, nil)
	evaluator := NewEvaluator(codec)

	token, _, err := codec.Issue("john@company.com", []string{"USER"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	principal, err := evaluator.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if principal.Subject != "john@company.com" {
		t.Fatalf("unexpected subject: %s", principal.Subject)
	}
	if !principal.HasAnyRole("USER") {
		t.Fatal("expected USER role on principal")
	}
}

func TestEvaluatorRejectsEmptyAndInvalidTokens(t *testing.T) {
	evaluator := NewEvaluator(newTestCodec(t, nil))

	if _, err := evaluator.Authenticate(""); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty credential, got %v", err)
	}
	if _, err := evaluator.Authenticate("garbage.token.value"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage credential, got %v", err)
	}
}
