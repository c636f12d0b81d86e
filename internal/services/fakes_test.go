package services

import (
	"context"
	"sync"
	"time"

	"databank/internal/i18n"
	"databank/internal/models"
	"databank/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// memUserRepo mirrors the conditional updates of the SQL repository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // by email

	getErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.ConfirmEmailInfo != nil {
		info := *u.ConfirmEmailInfo
		cp.ConfirmEmailInfo = &info
	}
	return &cp
}

func (r *memUserRepo) put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Email] = copyUser(u)
}

func (r *memUserRepo) stored(email string) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil
	}
	return copyUser(u)
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	r.users[user.Email] = copyUser(user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*models.User
	for _, u := range r.users {
		res = append(res, copyUser(u))
	}
	if offset >= len(res) {
		return nil, nil
	}
	res = res[offset:]
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func sameCode(stored, expected *models.ConfirmEmailInfo) bool {
	return stored != nil && expected != nil &&
		stored.Code == expected.Code && stored.Expiry.Equal(expected.Expiry)
}

func (r *memUserRepo) StartConfirmEmail(_ context.Context, email string, info *models.ConfirmEmailInfo, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return false, nil
	}
	if u.ConfirmEmailInfo != nil && u.ConfirmEmailInfo.Expiry.After(now) {
		return false, nil
	}
	cp := *info
	u.ConfirmEmailInfo = &cp
	return true, nil
}

func (r *memUserRepo) IncrementConfirmAttempts(_ context.Context, email string, expected *models.ConfirmEmailInfo) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok || !sameCode(u.ConfirmEmailInfo, expected) {
		return 0, false, nil
	}
	u.ConfirmEmailInfo.AttemptsMade++
	return u.ConfirmEmailInfo.AttemptsMade, true, nil
}

func (r *memUserRepo) ConsumeConfirmEmail(_ context.Context, email string, expected *models.ConfirmEmailInfo, maxAttempts int, confirmedAt time.Time) (*time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok || !sameCode(u.ConfirmEmailInfo, expected) || u.ConfirmEmailInfo.AttemptsMade > maxAttempts {
		return nil, false, nil
	}
	u.ConfirmEmailInfo = nil
	if u.ConfirmedAt == nil {
		at := confirmedAt
		u.ConfirmedAt = &at
	}
	at := *u.ConfirmedAt
	return &at, true, nil
}

func (r *memUserRepo) SetVerified(_ context.Context, id string, at time.Time) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id {
			continue
		}
		if u.VerifiedAt == nil {
			t := at
			u.VerifiedAt = &t
		}
		t := *u.VerifiedAt
		return &t, nil
	}
	return nil, nil
}

type memSetupRepo struct {
	mu    sync.Mutex
	info  *models.VerificationInfo
	users *memUserRepo
}

func (r *memSetupRepo) GetVerificationInfo(context.Context) (*models.VerificationInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info == nil {
		return nil, nil
	}
	cp := *r.info
	return &cp, nil
}

func (r *memSetupRepo) UpdateVerificationInfo(_ context.Context, info models.VerificationInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info == nil {
		return repositories.ErrNotInitialized
	}
	r.info = &info
	return nil
}

func (r *memSetupRepo) Initialize(ctx context.Context, admin *models.User, info models.VerificationInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.info != nil {
		return repositories.ErrAlreadyInitialized
	}
	if err := r.users.Create(ctx, admin); err != nil {
		return err
	}
	r.info = &info
	return nil
}

type sentMail struct {
	to, subject, text string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendMail(_ context.Context, to, subject, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

// testClock is a settable time source.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// codeSeq hands out codes in order, repeating the last one.
func codeSeq(codes ...int) func() (int, error) {
	var mu sync.Mutex
	i := 0
	return func() (int, error) {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}

type testEnv struct {
	users  *memUserRepo
	setup  *memSetupRepo
	mailer *fakeMailer
	clock  *testClock
	hasher PasswordHasher
	tokens TokenService

	confirm  *confirmEmailService
	setupSvc *setupService
	auth     *authService
}

func newTestEnv(policy models.VerificationPolicy) *testEnv {
	users := newMemUserRepo()
	env := &testEnv{
		users:  users,
		setup:  &memSetupRepo{users: users},
		mailer: &fakeMailer{},
		clock:  &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		hasher: NewBcryptHasher(bcrypt.MinCost),
	}
	log := zap.NewNop()

	ts := NewTokenService("test-secret", time.Hour).(*tokenService)
	ts.now = env.clock.Now
	env.tokens = ts

	settings, err := NewVerificationSettings(6*time.Minute, 3)
	if err != nil {
		panic(err)
	}
	env.confirm = NewConfirmEmailService(users, env.mailer, i18nTranslator, settings, log).(*confirmEmailService)
	env.confirm.now = env.clock.Now
	env.confirm.newCode = codeSeq(111111)

	env.setupSvc = NewSetupService(env.setup, env.hasher, policy, log).(*setupService)
	env.setupSvc.now = env.clock.Now

	auth, err := NewAuthService(users, env.hasher, env.tokens, env.confirm, env.setupSvc, nil, log)
	if err != nil {
		panic(err)
	}
	env.auth = auth.(*authService)
	env.auth.now = env.clock.Now
	return env
}

func (e *testEnv) signup(email string) *models.User {
	u, err := e.auth.CreateAccount(context.Background(), models.CreateAccountRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     email,
		Password:  "correct horse",
	})
	if err != nil {
		panic(err)
	}
	return u
}

var i18nTranslator = i18n.New()
