package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/lockout"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }
func boolPtr(b bool) *bool { return &b }

func TestAdminService_CreateUser_Success(t *testing.T) {
	h := newAuthHarness(t)

	id, err := h.admin.CreateUser(context.Background(), ports.CreateUserInput{
		Login:    "alice",
		Password: "pw1-long",
		RoleID:   h.store.roleID(domain.RoleManager),
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected user id")
	}

	u := h.store.user("alice")
	if u == nil {
		t.Fatalf("user not stored")
	}
	if u.IsBlocked || u.FailedAttempts != 0 || u.LastLogin != nil {
		t.Fatalf("unexpected initial state: %+v", u)
	}
	if u.PasswordHash == "pw1-long" || !h.hasher.Verify("pw1-long", u.PasswordHash) {
		t.Fatalf("expected password to be hashed")
	}
	if ev := h.audit.last(); ev.Type != domain.EventUserCreated || !ev.Success {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestAdminService_CreateUser_Errors(t *testing.T) {
	h := newAuthHarness(t)
	h.seed(t, "bob", "pw1234", domain.RoleStaff)
	staff := h.store.roleID(domain.RoleStaff)

	cases := []struct {
		name string
		in   ports.CreateUserInput
		want error
	}{
		{"duplicate", ports.CreateUserInput{Login: "bob", Password: "pw1234", RoleID: staff}, domain.ErrDuplicateLogin},
		{"unknown role", ports.CreateUserInput{Login: "newbie", Password: "pw1234", RoleID: 99}, domain.ErrRoleNotFound},
		{"empty login", ports.CreateUserInput{Login: " ", Password: "pw1234", RoleID: staff}, domain.ErrValidation},
		{"short password", ports.CreateUserInput{Login: "newbie", Password: "pw", RoleID: staff}, domain.ErrValidation},
		{"missing role", ports.CreateUserInput{Login: "newbie", Password: "pw1234"}, domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.admin.CreateUser(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if h.store.user("newbie") != nil {
		t.Fatalf("rejected create must not insert a row")
	}
}

func TestAdminService_UpdateUser(t *testing.T) {
	h := newAuthHarness(t)
	u := h.seed(t, "carl", "pw1234", domain.RoleStaff)
	h.seed(t, "dora", "pw1234", domain.RoleStaff)
	ctx := context.Background()

	res, err := h.admin.UpdateUser(ctx, ports.UpdateUserInput{
		UserID: u.ID,
		Login:  strPtr("carlos"),
		RoleID: int64Ptr(h.store.roleID(domain.RoleManager)),
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if !res.Changed || res.Message != msgUserUpdated {
		t.Fatalf("unexpected result: %+v", res)
	}
	stored := h.store.user("carlos")
	if stored == nil || stored.RoleID != h.store.roleID(domain.RoleManager) {
		t.Fatalf("update not applied: %+v", stored)
	}

	res, err = h.admin.UpdateUser(ctx, ports.UpdateUserInput{UserID: u.ID, Login: strPtr("carlos"), IsBlocked: boolPtr(false)})
	if err != nil {
		t.Fatalf("no-op update returned error: %v", err)
	}
	if res.Changed || res.Message != msgNoChanges {
		t.Fatalf("expected no-op result, got %+v", res)
	}
}

func TestAdminService_UpdateUser_ValidatesBeforeWriting(t *testing.T) {
	h := newAuthHarness(t)
	u := h.seed(t, "ed", "pw1234", domain.RoleStaff)
	h.seed(t, "fay", "pw1234", domain.RoleStaff)
	ctx := context.Background()

	_, err := h.admin.UpdateUser(ctx, ports.UpdateUserInput{
		UserID:    u.ID,
		Login:     strPtr("ed2"),
		RoleID:    int64Ptr(42),
		IsBlocked: boolPtr(true),
	})
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	stored := h.store.user("ed")
	if stored == nil || stored.IsBlocked {
		t.Fatalf("failed update must not apply other fields: %+v", stored)
	}

	if _, err := h.admin.UpdateUser(ctx, ports.UpdateUserInput{UserID: u.ID, Login: strPtr("fay")}); !errors.Is(err, domain.ErrDuplicateLogin) {
		t.Fatalf("expected ErrDuplicateLogin, got %v", err)
	}
	if _, err := h.admin.UpdateUser(ctx, ports.UpdateUserInput{UserID: 404}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	txBefore := h.store.txCount
	if _, err := h.admin.UpdateUser(ctx, ports.UpdateUserInput{UserID: u.ID, Login: strPtr("")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if h.store.txCount != txBefore {
		t.Fatalf("validation errors must surface before the store is touched")
	}
}

func TestAdminService_UpdateUser_UnblockResetsCounter(t *testing.T) {
	h := newAuthHarness(t)
	u := h.seed(t, "gus", "pw1234", domain.RoleStaff)
	for i := 0; i < 3; i++ {
		_, _ = h.auth.Authenticate(context.Background(), "gus", "wrong")
	}

	if _, err := h.admin.UpdateUser(context.Background(), ports.UpdateUserInput{UserID: u.ID, IsBlocked: boolPtr(false)}); err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	stored := h.store.user("gus")
	if stored.IsBlocked || stored.FailedAttempts != 0 {
		t.Fatalf("unblock must reset the counter: %+v", stored)
	}
}

func TestAdminService_UnblockUser(t *testing.T) {
	h := newAuthHarness(t)
	u := h.seed(t, "hal", "pw1234", domain.RoleStaff)
	ctx := context.Background()

	res, err := h.admin.UnblockUser(ctx, u.ID)
	if err != nil || res.Changed || res.Message != msgNotBlocked {
		t.Fatalf("expected successful no-op, got %+v (%v)", res, err)
	}

	for i := 0; i < 3; i++ {
		_, _ = h.auth.Authenticate(ctx, "hal", "wrong")
	}
	res, err = h.admin.UnblockUser(ctx, u.ID)
	if err != nil || !res.Changed {
		t.Fatalf("expected unblock, got %+v (%v)", res, err)
	}
	stored := h.store.user("hal")
	if stored.IsBlocked || stored.FailedAttempts != 0 {
		t.Fatalf("unexpected state: %+v", stored)
	}
	if _, err := h.auth.Authenticate(ctx, "hal", "pw1234"); err != nil {
		t.Fatalf("unblocked user should log in: %v", err)
	}

	if _, err := h.admin.UnblockUser(ctx, 404); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_BlockUser(t *testing.T) {
	h := newAuthHarness(t)
	u := h.seed(t, "ida", "pw1234", domain.RoleStaff)
	ctx := context.Background()

	res, err := h.admin.BlockUser(ctx, u.ID)
	if err != nil || !res.Changed {
		t.Fatalf("expected block, got %+v (%v)", res, err)
	}
	if _, err := h.auth.Authenticate(ctx, "ida", "pw1234"); !isLocked(err, domain.LockReasonBlocked) {
		t.Fatalf("expected blocked rejection, got %v", err)
	}
	res, _ = h.admin.BlockUser(ctx, u.ID)
	if res.Changed || res.Message != msgAlreadyBlocked {
		t.Fatalf("expected no-op, got %+v", res)
	}
}

func TestAdminService_ListUsersAndRoles(t *testing.T) {
	h := newAuthHarness(t)
	a := h.seed(t, "jack", "pw1234", domain.RoleAdministrator)
	b := h.seed(t, "kim", "pw1234", domain.RoleGuest)
	if _, err := h.admin.BlockUser(context.Background(), b.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	users, err := h.admin.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != a.ID || users[0].Role != domain.RoleAdministrator || users[0].State != string(lockout.StateActive) {
		t.Fatalf("unexpected first row: %+v", users[0])
	}
	if users[1].Role != domain.RoleGuest || users[1].State != string(lockout.StateBlockedAdministrative) {
		t.Fatalf("unexpected second row: %+v", users[1])
	}

	roles, err := h.admin.ListRoles(context.Background())
	if err != nil || len(roles) != 4 {
		t.Fatalf("expected 4 roles, got %d (%v)", len(roles), err)
	}
}

func TestScenario_CreateLockResetChange(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	id, err := h.admin.CreateUser(ctx, ports.CreateUserInput{Login: "alice", Password: "pw1pw1", RoleID: h.store.roleID(domain.RoleManager)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Complete the first login so the account is a regular active one.
	if err := h.auth.ChangePassword(ctx, id, "pw1pw1", "pw1pw1-new"); err != nil {
		t.Fatalf("change: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, _ = h.auth.Authenticate(ctx, "alice", "wrong")
	}
	if _, err := h.auth.Authenticate(ctx, "alice", "pw1pw1-new"); !errors.Is(err, domain.ErrLocked) {
		t.Fatalf("expected blocked, got %v", err)
	}

	h.now = h.now.Add(time.Hour)
	temp, err := h.auth.ResetPassword(ctx, "alice")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	res, err := h.auth.Authenticate(ctx, "alice", temp)
	if err != nil || !res.IsFirstLogin {
		t.Fatalf("expected first login after reset, got %+v (%v)", res, err)
	}
	if err := h.auth.ChangePassword(ctx, id, temp, "fresh-pass"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if first, _ := h.auth.IsFirstLogin(ctx, id); first {
		t.Fatalf("first login flag must be cleared")
	}
}

func TestAdminService_EnsureAdministrator(t *testing.T) {
	h := newAuthHarness(t)
	ctx := context.Background()

	created, err := h.admin.EnsureAdministrator(ctx, "root", "bootstrap1")
	if err != nil {
		t.Fatalf("EnsureAdministrator returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected the administrator to be created")
	}
	u := h.store.user("root")
	if u == nil || u.RoleID != h.store.roleID(domain.RoleAdministrator) {
		t.Fatalf("unexpected bootstrap account: %+v", u)
	}

	created, err = h.admin.EnsureAdministrator(ctx, "root", "another1")
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if created {
		t.Fatalf("second call must not create an account")
	}
	if !h.hasher.Verify("bootstrap1", h.store.user("root").PasswordHash) {
		t.Fatalf("existing password must be preserved")
	}
}
