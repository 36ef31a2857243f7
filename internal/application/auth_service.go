package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/identitylab/identity-service/internal/domain/entity"
	repo "github.com/identitylab/identity-service/internal/domain/repository"
	"github.com/identitylab/identity-service/pkg/helpers"
	"github.com/identitylab/identity-service/pkg/mailer"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	// The two cases are deliberately indistinguishable to the caller so the
	// login endpoint cannot be used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound = errors.New("user not found")

	// ErrStorage is the opaque failure surfaced when the repository breaks
	// for any reason other than a constraint violation. Details are logged,
	// never returned.
	ErrStorage = errors.New("storage failure")
)

// DuplicateEmailError reports a registration attempt with an email that is
// already taken.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("%s already exists", e.Email)
}

const profileCacheTTL = 5 * time.Minute

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// Service orchestrates registration, login and user lookups. Redis, ES and
// the Rabbit publisher are optional; a nil client skips that concern.
type Service struct {
	Repo         repo.UserRepository
	Hasher       *helpers.Hasher
	JWT          *helpers.JWTManager
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Pub          *helpers.RabbitPublisher
	MailEnabled  bool
}

func NewService(repo repo.UserRepository, hasher *helpers.Hasher, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, pub *helpers.RabbitPublisher, mailEnabled bool) *Service {
	return &Service{
		Repo:         repo,
		Hasher:       hasher,
		JWT:          jwt,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Pub:          pub,
		MailEnabled:  mailEnabled,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	AvatarURL string
}

// AuthResponse pairs a sanitized user record with a freshly issued token.
type AuthResponse struct {
	User      entity.Profile `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// CreateUser hashes the password, persists the user and returns the sanitized
// record. The plaintext password exists only for the duration of this call
// and never reaches a log line or an error payload.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput) (*entity.Profile, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		AvatarURL:    in.AvatarURL,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, &DuplicateEmailError{Email: in.Email}
		}
		s.logError("create user failed", err, logrus.Fields{"email": in.Email})
		return nil, ErrStorage
	}

	p := u.Sanitize()
	s.indexUser(ctx, p)
	s.enqueueWelcome(ctx, p)
	return &p, nil
}

// Register runs CreateUser and, on success, issues a token for the new user.
// A failed creation propagates unchanged and no token is issued.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	p, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.JWT.Generate(p.ID)
	if err != nil {
		s.logError("issue token failed", err, logrus.Fields{"user_id": p.ID})
		return nil, err
	}
	return &AuthResponse{User: *p, Token: token, ExpiresAt: exp}, nil
}

// Login verifies the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logError("lookup by email failed", err, logrus.Fields{"email": email})
		return nil, ErrStorage
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.Generate(u.ID)
	if err != nil {
		s.logError("issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, err
	}
	return &AuthResponse{User: u.Sanitize(), Token: token, ExpiresAt: exp}, nil
}

// GetUserByID returns the sanitized record for id, reading through the Redis
// profile cache when one is configured.
func (s *Service) GetUserByID(ctx context.Context, id string) (*entity.Profile, error) {
	if s.Redis != nil {
		var cached entity.Profile
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logError("lookup by id failed", err, logrus.Fields{"user_id": id})
		return nil, ErrStorage
	}

	p := u.Sanitize()
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(id), p, profileCacheTTL); err != nil {
			s.logWarn("profile cache write failed", err, logrus.Fields{"user_id": id})
		}
	}
	return &p, nil
}

// ListUsers returns every user, each routed through Sanitize so the list can
// never carry a password hash.
func (s *Service) ListUsers(ctx context.Context) ([]entity.Profile, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		s.logError("list users failed", err, nil)
		return nil, ErrStorage
	}
	profiles := make([]entity.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Sanitize())
	}
	return profiles, nil
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// indexUser pushes the sanitized profile to Elasticsearch. The document is
// built from the Profile projection, so it cannot contain the hash.
func (s *Service) indexUser(ctx context.Context, p entity.Profile) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"email":      p.Email,
		"name":       p.Name,
		"avatar_url": p.AvatarURL,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.logWarn("es index failed", err, logrus.Fields{"user_id": p.ID})
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.logWarn("es index response error", nil, logrus.Fields{"status": res.Status(), "user_id": p.ID})
	}
}

// enqueueWelcome publishes the welcome email job for a freshly created user.
func (s *Service) enqueueWelcome(ctx context.Context, p entity.Profile) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       p.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Email": p.Email, "Name": p.Name},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.logWarn("welcome email enqueue failed", err, logrus.Fields{"user_id": p.ID})
	}
}

func (s *Service) logError(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	if fields == nil {
		fields = logrus.Fields{}
	}
	s.Logger.WithError(err).WithFields(fields).Error(msg)
}

func (s *Service) logWarn(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		s.Logger.WithError(err).WithFields(fields).Warn(msg)
		return
	}
	s.Logger.WithFields(fields).Warn(msg)
}
