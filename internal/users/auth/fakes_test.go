// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/mail"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/users/auth"
)

// # Repository

// memoryUsers is an in-memory [auth.UserRepository].
type memoryUsers struct {
	mu      sync.Mutex
	byID    map[string]*auth.User
	clock   func() time.Time
	deletes []string
}

func newMemoryUsers(clock func() time.Time) *memoryUsers {
	return &memoryUsers{byID: make(map[string]*auth.User), clock: clock}
}

func (repo *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, user := range repo.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repo *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (repo *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.byID {
		if existing.Email == user.Email {
			return apperr.Conflict("Email already exists")
		}
	}

	user.CreatedAt = repo.clock()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	repo.byID[user.ID] = &copied
	return nil
}

func (repo *memoryUsers) UpdateByID(_ context.Context, id string, patch auth.UserPatch) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.IsVerified != nil {
		user.IsVerified = *patch.IsVerified
	}
	if patch.ClearOTP {
		user.OTPHash = ""
		user.OTPExpiresAt = nil
	} else {
		if patch.OTPHash != nil {
			user.OTPHash = *patch.OTPHash
		}
		if patch.OTPExpiresAt != nil {
			expiresAt := *patch.OTPExpiresAt
			user.OTPExpiresAt = &expiresAt
		}
	}
	user.UpdatedAt = repo.clock()

	copied := *user
	return &copied, nil
}

func (repo *memoryUsers) DeleteByEmail(_ context.Context, email string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.deletes = append(repo.deletes, "email:"+email)
	for id, user := range repo.byID {
		if user.Email == email {
			delete(repo.byID, id)
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func (repo *memoryUsers) DeleteByID(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.deletes = append(repo.deletes, "id:"+id)
	if _, ok := repo.byID[id]; !ok {
		return auth.ErrUserNotFound
	}
	delete(repo.byID, id)
	return nil
}

func (repo *memoryUsers) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.byID)
}

// # Mail

var codePattern = regexp.MustCompile(`<strong>(\d{6})</strong>`)

// outbox is a [mail.Sender] that keeps every message and can be told to fail.
type outbox struct {
	mu       sync.Mutex
	messages []mail.Message
	fail     error
}

func (box *outbox) Send(_ context.Context, message mail.Message) error {
	box.mu.Lock()
	defer box.mu.Unlock()

	if box.fail != nil {
		return box.fail
	}
	box.messages = append(box.messages, message)
	return nil
}

func (box *outbox) sent() int {
	box.mu.Lock()
	defer box.mu.Unlock()
	return len(box.messages)
}

// lastCode returns the code carried by the newest message to email.
func (box *outbox) lastCode(t *testing.T, email string) string {
	t.Helper()
	box.mu.Lock()
	defer box.mu.Unlock()

	for i := len(box.messages) - 1; i >= 0; i-- {
		if box.messages[i].To != email {
			continue
		}
		match := codePattern.FindStringSubmatch(box.messages[i].HTML)
		require.Len(t, match, 2, "message carries no code")
		return match[1]
	}
	t.Fatalf("no message sent to %s", email)
	return ""
}

// # Throttle

// stubThrottle answers every Acquire with a fixed wait or error.
type stubThrottle struct {
	wait     time.Duration
	err      error
	calls    int
	released int
}

func (throttle *stubThrottle) Acquire(context.Context, string, string) (time.Duration, error) {
	throttle.calls++
	return throttle.wait, throttle.err
}

func (throttle *stubThrottle) Release(context.Context, string, string) error {
	throttle.released++
	return nil
}

// # Codes

// pinnedCodes hands out queued codes before falling back to random ones.
type pinnedCodes struct {
	*sec.OTPIssuer
	hasher *sec.Hasher
	clock  func() time.Time
	queue  []string
}

func (codes *pinnedCodes) Issue() (*sec.OTP, error) {
	if len(codes.queue) == 0 {
		return codes.OTPIssuer.Issue()
	}

	code := codes.queue[0]
	codes.queue = codes.queue[1:]

	hash, err := codes.hasher.Hash(code)
	if err != nil {
		return nil, err
	}
	return &sec.OTP{Code: code, Hash: hash, ExpiresAt: codes.clock().Add(codes.TTL())}, nil
}

// pin queues the codes the next sends will carry.
func (codes *pinnedCodes) pin(values ...string) {
	codes.queue = append(codes.queue, values...)
}

// # Harness

var errSMTPDown = errors.New("smtp: connection refused")

// harness wires a real Service over in-memory collaborators and a movable clock.
type harness struct {
	service  *auth.Service
	users    *memoryUsers
	outbox   *outbox
	throttle *stubThrottle
	codes    *pinnedCodes
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	throttle := &stubThrottle{}
	h := newHarnessWithThrottle(t, throttle)
	h.throttle = throttle
	return h
}

// newHarnessWithThrottle builds the harness around a caller-supplied throttle.
func newHarnessWithThrottle(t *testing.T, throttle auth.CodeThrottle) *harness {
	t.Helper()

	h := &harness{
		outbox: &outbox{},
		now:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	hasher := sec.NewHasher(bcrypt.MinCost)
	h.codes = &pinnedCodes{
		OTPIssuer: sec.NewOTPIssuer(hasher, 10*time.Minute).WithClock(clock),
		hasher:    hasher,
		clock:     clock,
	}
	tokens, err := sec.NewTokenService([]byte(strings.Repeat("k", 32)), "famvault", 24*time.Hour)
	require.NoError(t, err)

	h.users = newMemoryUsers(clock)
	h.service = auth.NewService(h.users, throttle, hasher, h.codes, tokens, h.outbox)
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// registerVerified runs the happy sign-up path and returns the account.
func (h *harness) registerVerified(t *testing.T, email, password string) *auth.User {
	t.Helper()
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "ada", Email: email, Password: password})
	require.NoError(t, err)

	user, err := h.service.VerifyOTP(ctx, email, h.outbox.lastCode(t, email))
	require.NoError(t, err)
	return user
}
