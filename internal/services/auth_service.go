package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"ecomapp/internal/domain"
	applog "ecomapp/internal/log"
	"ecomapp/internal/notify"
	"ecomapp/internal/repos"
	"ecomapp/internal/validate"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

const badCredentials = "No active account found with the given credentials"

// Notifier hands a message to background delivery.
type Notifier interface {
	Dispatch(m notify.Message)
}

type AuthConfig struct {
	BaseURL       string
	ActivationTTL time.Duration
	BcryptCost    int
}

type AuthService struct {
	db       *sqlx.DB
	tx       *repos.TxManager
	notifier Notifier
	mail     *notify.Renderer
	cfg      AuthConfig
}

func NewAuthService(db *sqlx.DB, n Notifier, mail *notify.Renderer, cfg AuthConfig) *AuthService {
	if cfg.ActivationTTL <= 0 {
		cfg.ActivationTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AuthService{db: db, tx: repos.NewTxManager(db), notifier: n, mail: mail, cfg: cfg}
}

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates an inactive account and sends its activation link in the
// background. Delivery problems are logged and never fail the registration.
func (s *AuthService) Register(ctx context.Context, r Registration) (*domain.User, error) {
	first, ok := validate.Name(r.FirstName)
	if !ok {
		return nil, domain.Missing("fname")
	}
	last := strings.TrimSpace(r.LastName)
	if len(last) > 150 {
		return nil, domain.Invalid("lname", "last name is too long")
	}
	if strings.TrimSpace(r.Email) == "" {
		return nil, domain.Missing("email")
	}
	email, ok := validate.Email(r.Email)
	if !ok {
		return nil, domain.Invalid("email", "enter a valid email address")
	}
	if r.Password == "" {
		return nil, domain.Missing("password")
	}
	if !validate.Password(r.Password) {
		return nil, domain.Invalid("password", "password must be 8-72 characters with upper, lower, digit and symbol")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{FirstName: first, LastName: last, Email: email, Hash: string(hash), Role: domain.RoleUser}
	token := newToken()
	expires := time.Now().UTC().Add(s.cfg.ActivationTTL)
	err = s.tx.Transact(ctx, func(q repos.Querier) error {
		users := repos.NewUserRepo(q)
		if err := users.Create(ctx, u); err != nil {
			if repos.IsUniqueViolation(err) {
				return domain.Conflict("User with this email already exists")
			}
			return err
		}
		return users.CreateActivationToken(ctx, token, u.ID, expires)
	})
	if err != nil {
		return nil, err
	}

	s.sendActivation(u, token, expires)
	return u, nil
}

func (s *AuthService) sendActivation(u *domain.User, token string, expires time.Time) {
	if s.notifier == nil || s.mail == nil {
		return
	}
	link := s.cfg.BaseURL + "/api/users/activate/" + EncodeUID(u.ID) + "/" + token
	m, err := s.mail.Activation(u.Email, notify.ActivationData{Name: u.DisplayName(), Link: link, Expires: expires})
	if err != nil {
		applog.Error(nil, "auth.activation.render", err, map[string]any{"user_id": u.ID})
		return
	}
	s.notifier.Dispatch(m)
}

// EncodeUID is the url-safe form of a user id used in activation links.
func EncodeUID(id string) string { return base64.RawURLEncoding.EncodeToString([]byte(id)) }

// Activate consumes an activation token and enables the account.
func (s *AuthService) Activate(ctx context.Context, uidb64, token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(uidb64, "="))
	if err != nil || token == "" {
		return domain.NotFound("activation link")
	}
	uid := string(raw)
	return s.tx.Transact(ctx, func(q repos.Querier) error {
		users := repos.NewUserRepo(q)
		if err := users.ConsumeActivationToken(ctx, token, uid, time.Now().UTC()); err != nil {
			return lookup(err, "activation link")
		}
		return lookup(users.Activate(ctx, uid), "user")
	})
}

// Login checks credentials and opens a session, returning its token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	users := repos.NewUserRepo(s.db)
	u, err := users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repos.IsNotFound(err) {
			return nil, "", domain.Unauthorized(badCredentials)
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil || !u.IsActive {
		return nil, "", domain.Unauthorized(badCredentials)
	}
	sid := newToken()
	if err := users.CreateSession(ctx, sid, u.ID); err != nil {
		return nil, "", err
	}
	return u, sid, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return repos.NewUserRepo(s.db).DeleteSession(ctx, sid)
}

// CurrentUser resolves a session token; unknown tokens are Unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, domain.Unauthorized("authentication required")
	}
	u, err := repos.NewUserRepo(s.db).SessionUser(ctx, sid)
	if repos.IsNotFound(err) {
		return nil, domain.Unauthorized("invalid or expired session")
	}
	return u, err
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return repos.NewUserRepo(s.db).List(ctx)
}

// DeleteUser cancels the user's open orders (restocking them), then removes
// the account and everything that hangs off it. Orders are kept.
func (s *AuthService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if actor != nil && actor.ID == id {
		return domain.BusinessRule("you cannot delete your own account")
	}
	return s.tx.Transact(ctx, func(q repos.Querier) error {
		if _, err := repos.NewUserRepo(q).ByID(ctx, id); err != nil {
			return lookup(err, "user")
		}
		orders, err := repos.NewOrderRepo(q).ListByUser(ctx, id)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if !o.Status.Open() {
				continue
			}
			if err := transition(ctx, q, o, domain.StatusCancelled); err != nil {
				return err
			}
		}
		return repos.NewUserRepo(q).DeleteCascade(ctx, id)
	})
}

// EnsureAdmin creates an active admin, or promotes and activates an existing
// account with that email.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, firstName string) (*domain.User, error) {
	email, ok := validate.Email(email)
	if !ok {
		return nil, domain.Invalid("email", "enter a valid email address")
	}
	var out *domain.User
	err := s.tx.Transact(ctx, func(q repos.Querier) error {
		users := repos.NewUserRepo(q)
		u, err := users.ByEmail(ctx, email)
		switch {
		case err == nil:
			if err := users.SetRole(ctx, u.ID, domain.RoleAdmin); err != nil {
				return err
			}
			if err := users.Activate(ctx, u.ID); err != nil {
				return err
			}
			u.Role, u.IsActive = domain.RoleAdmin, true
			out = u
			return nil
		case !repos.IsNotFound(err):
			return err
		}
		if !validate.Password(password) {
			return domain.Invalid("password", "password must be 8-72 characters with upper, lower, digit and symbol")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
		if err != nil {
			return err
		}
		out = &domain.User{Email: email, FirstName: strings.TrimSpace(firstName), Hash: string(hash), Role: domain.RoleAdmin, IsActive: true}
		return users.Create(ctx, out)
	})
	return out, err
}

// newToken returns 32 random bytes, hex encoded.
func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
