package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"watchtower/internal/domain/entity"
	"watchtower/internal/domain/repository"
	"watchtower/internal/domain/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory UserRepository enforcing the same uniqueness
// rules as the real store.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User

	failWith error // When set, every call fails with this error.
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	normalized := entity.NormalizeEmail(email)
	for _, user := range r.users {
		if user.Email == normalized {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByFederatedID(_ context.Context, federatedID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return nil, r.failWith
	}

	for _, user := range r.users {
		if user.FederatedID != "" && user.FederatedID == federatedID {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if user.FederatedID != "" && existing.FederatedID == user.FederatedID {
			return repository.ErrDuplicateFederatedID
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}

	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

// fakeHasher hashes deterministically so tests can assert on stored values.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// fakeTokenService issues predictable tokens and remembers what it issued.
type fakeTokenService struct {
	mu     sync.Mutex
	issued map[string]uuid.UUID

	issueErr  error
	verifyErr error
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]uuid.UUID)}
}

func (s *fakeTokenService) Issue(userID uuid.UUID, _ time.Duration) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token := "token-" + userID.String()
	s.issued[token] = userID

	return token, nil
}

func (s *fakeTokenService) Verify(token string) (*service.TokenClaims, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.issued[token]
	if !ok {
		return nil, service.ErrTokenSignatureInvalid
	}

	return &service.TokenClaims{UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *fakeTokenService) SessionTTL(federated bool) time.Duration {
	if federated {
		return 7 * 24 * time.Hour
	}

	return 24 * time.Hour
}

// fakeIdentityProvider returns a fixed federated identity or error.
type fakeIdentityProvider struct {
	identity *service.FederatedIdentity
	err      error
}

func (p *fakeIdentityProvider) VerifyIDToken(context.Context, string) (*service.FederatedIdentity, error) {
	if p.err != nil {
		return nil, p.err
	}

	return p.identity, nil
}

// fakeAnalysisClient delegates to a function so each test controls upstream
// behavior and can count calls.
type fakeAnalysisClient struct {
	mu      sync.Mutex
	calls   int
	analyze func(ctx context.Context, frameBase64, prompt string) (string, error)
}

func (c *fakeAnalysisClient) Analyze(ctx context.Context, frameBase64, prompt string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.analyze == nil {
		return "", errors.New("no analyze function configured")
	}

	return c.analyze(ctx, frameBase64, prompt)
}

func (c *fakeAnalysisClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

// fakePublisher records published alert events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.AlertEvent
	err    error
}

func (p *fakePublisher) PublishAlertEvent(_ context.Context, event *service.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []*service.AlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.AlertEvent(nil), p.events...)
}

// fakeNotifier records alert notifications.
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (n *fakeNotifier) NotifyAlert(_ context.Context, title, body string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)

	return nil
}

func (n *fakeNotifier) notified() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.titles)
}
