package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func validSignup() *models.SignupRequest {
	return &models.SignupRequest{
		Name:     "Amina",
		Email:    "amina@example.com",
		Password: testPassword,
		Phone:    "+212600000001",
	}
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.SignupRequest)
		want   string
	}{
		{"missing name", func(r *models.SignupRequest) { r.Name = "" }, "All fields must be filled"},
		{"missing email", func(r *models.SignupRequest) { r.Email = "" }, "All fields must be filled"},
		{"missing password", func(r *models.SignupRequest) { r.Password = "" }, "All fields must be filled"},
		{"missing phone", func(r *models.SignupRequest) { r.Phone = "" }, "All fields must be filled"},
		{"bad email", func(r *models.SignupRequest) { r.Email = "not-an-email" }, "Email is not valid"},
		{"bad phone", func(r *models.SignupRequest) { r.Phone = "call me" }, "Phone number is not valid"},
		{"short password", func(r *models.SignupRequest) { r.Password = "Ab1!" }, "Password must be at least 8 characters"},
		{"no upper or special", func(r *models.SignupRequest) { r.Password = "abc12345" }, "Password must include an uppercase letter"},
		{"short name", func(r *models.SignupRequest) { r.Name = "Al" }, "user validation failed: name must have at least 3"},
		{"long password", func(r *models.SignupRequest) { r.Password = "Aa1!" + strings.Repeat("x", 80) }, "Password must be at most 72 bytes"},
		{"unknown role", func(r *models.SignupRequest) { r.Role = "root" }, "role must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := validSignup()
			tt.mutate(req)

			_, err := env.users.Signup(context.Background(), req)
			verr := assertErrType[*ValidationError](t, err)
			if !strings.Contains(verr.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", verr.Message, tt.want)
			}
		})
	}
}

func TestSignupRejectsInvalidUserBeforeHashing(t *testing.T) {
	hasher, err := NewPasswordHasher(1, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	// Hold the only hashing slot: reaching Hash would block until ctx expires.
	if err := hasher.slots.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer hasher.slots.Release(1)

	logger := zerolog.Nop()
	users := NewUserService(store.NewMemoryStore(), hasher, NewAuthService("test-secret", time.Hour, logger), logger,
		UserServiceOptions{AllowPrivilegedSignup: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := validSignup()
	req.Name = "Al"
	_, err = users.Signup(ctx, req)
	verr := assertErrType[*ValidationError](t, err)
	if !strings.Contains(verr.Message, "name must have at least 3") {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestSignupCreatesClientWithHashedPassword(t *testing.T) {
	env := newTestEnv(t)
	req := validSignup()
	req.Email = "  Amina@Example.COM "

	u, err := env.users.Signup(context.Background(), req)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Role != models.RoleClient {
		t.Errorf("role = %s, want client", u.Role)
	}
	if u.Email != "amina@example.com" {
		t.Errorf("email = %q, want case-folded", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == testPassword {
		t.Errorf("password stored as %q", u.PasswordHash)
	}
	if u.ID.IsZero() {
		t.Error("user id not assigned")
	}
}

func TestSignupRejectsDuplicateEmailCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.users.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("first Signup: %v", err)
	}

	variants := []*models.SignupRequest{
		validSignup(),
		{Name: "Someone Else", Email: "AMINA@example.com", Password: "Other9?pass", Phone: "0612345678"},
		{Name: "Seller", Email: "amina@EXAMPLE.com", Password: testPassword, Phone: "+212600000009", Role: "seller"},
	}
	for _, req := range variants {
		_, err := env.users.Signup(ctx, req)
		cerr := assertErrType[*ConflictError](t, err)
		if cerr.Message != "Email already in use" {
			t.Errorf("message = %q", cerr.Message)
		}
	}
}

// Documents current behavior, not an endorsement: with privileged signup
// allowed (the default) an anonymous caller can register as admin.
func TestSignupHonorsRequestedRoleWhenPrivilegedSignupAllowed(t *testing.T) {
	env := newTestEnv(t)
	req := validSignup()
	req.Role = "admin"

	u, err := env.users.Signup(context.Background(), req)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %s, want admin", u.Role)
	}
}

func TestSignupRestrictsRolesWhenPrivilegedSignupDisabled(t *testing.T) {
	env := newTestEnvWithOptions(t, UserServiceOptions{AllowPrivilegedSignup: false})
	ctx := context.Background()

	for _, role := range []string{"seller", "admin"} {
		req := validSignup()
		req.Role = role
		_, err := env.users.Signup(ctx, req)
		assertErrType[*ValidationError](t, err)
	}

	req := validSignup()
	req.Role = "client"
	if _, err := env.users.Signup(ctx, req); err != nil {
		t.Fatalf("client signup: %v", err)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.users.Signup(ctx, validSignup())
	if err != nil {
		t.Fatal(err)
	}

	u, err := env.users.Login(ctx, &models.LoginRequest{Email: "AMINA@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("logged in as %s, want %s", u.ID.Hex(), created.ID.Hex())
	}

	_, err = env.users.Login(ctx, &models.LoginRequest{Email: "amina@example.com", Password: "Wrong1!pass"})
	if aerr := assertErrType[*AuthError](t, err); aerr.Message != "Incorrect password" {
		t.Errorf("wrong password message = %q", aerr.Message)
	}

	_, err = env.users.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	if aerr := assertErrType[*AuthError](t, err); aerr.Message != "Incorrect email" {
		t.Errorf("unknown email message = %q", aerr.Message)
	}

	_, err = env.users.Login(ctx, &models.LoginRequest{Email: "amina@example.com"})
	assertErrType[*ValidationError](t, err)
}

func TestAuthenticateReadsRoleFromStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, _ := env.signup(t, models.RoleSeller)

	// A token that claims admin still resolves to the stored seller role.
	token, err := env.auth.IssueToken(u.ID, models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	actor, err := env.users.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.ID != u.ID || actor.Role != models.RoleSeller {
		t.Errorf("actor = %+v, want seller %s", actor, u.ID.Hex())
	}
}

func TestAuthenticateFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ghost := newTestEnv(t)
	gone, _ := ghost.signup(t, models.RoleClient)
	orphanToken, _ := env.auth.IssueToken(gone.ID, models.RoleClient)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "Authorization token required"},
		{"garbage", "not.a.token", "Request is not authorized"},
		{"unknown user", orphanToken, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.Authenticate(ctx, tt.token)
			if aerr := assertErrType[*AuthError](t, err); aerr.Message != tt.want {
				t.Errorf("message = %q, want %q", aerr.Message, tt.want)
			}
		})
	}
}
