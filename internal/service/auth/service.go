package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/repository"
)

// RoleUser is the role given to self-registered accounts.
const RoleUser = "user"

// RoleAdmin unlocks the admin operations.
const RoleAdmin = "admin"

var errInvalidCreds = svcErr.Unauthorized("invalid credentials")

var errNoSecret = errors.New("jwt secret is not configured")

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Service registers users, checks passwords and issues/verifies tokens.
type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
	}
}

// UserInput carries every field of a new account. Country, State, City,
// School and Role are optional.
type UserInput struct {
	FirstName         string
	LastName          string
	Email             string
	MobileNumber      string
	Password          string
	Birthdate         time.Time
	Gender            string
	SexualOrientation string
	GenderInterest    string
	Bio               string
	Country           string
	State             string
	City              string
	School            string
	Role              string
}

func (in *UserInput) normalize() error {
	for _, f := range []*string{
		&in.FirstName, &in.LastName, &in.Email, &in.MobileNumber, &in.Gender,
		&in.SexualOrientation, &in.GenderInterest, &in.Bio, &in.Country,
		&in.State, &in.City, &in.School, &in.Role,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Email = strings.ToLower(in.Email)

	var missing []string
	for name, v := range map[string]string{
		"first_name":         in.FirstName,
		"last_name":          in.LastName,
		"email":              in.Email,
		"mobile_number":      in.MobileNumber,
		"password":           in.Password,
		"gender":             in.Gender,
		"sexual_orientation": in.SexualOrientation,
		"gender_interest":    in.GenderInterest,
		"bio":                in.Bio,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if in.Birthdate.IsZero() {
		missing = append(missing, "birthdate")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return svcErr.InvalidOperation("invalid input: missing " + strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return svcErr.InvalidOperation("invalid input: email is invalid")
	}
	if in.Role == "" {
		in.Role = RoleUser
	}
	return nil
}

// Register creates a self-service account. Any role in the input is ignored.
//
// Behavior:
//   - Every required field must be present → InvalidOperation otherwise.
//   - Emails are unique, case-insensitively → InvalidOperation on reuse.
//   - The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in UserInput) (*db.User, error) {
	in.Role = RoleUser
	return s.CreateUser(ctx, in)
}

// CreateUser stores a new account with the role from the input.
// Callers other than Register check the actor is an admin.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*db.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if existing != nil {
		return nil, svcErr.InvalidOperation("email has already been taken")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, svcErr.Internal(err)
	}

	u := &db.User{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             in.Email,
		MobileNumber:      in.MobileNumber,
		Birthdate:         in.Birthdate,
		Gender:            in.Gender,
		SexualOrientation: in.SexualOrientation,
		GenderInterest:    in.GenderInterest,
		Bio:               in.Bio,
		Country:           in.Country,
		State:             in.State,
		City:              in.City,
		School:            in.School,
		PasswordHash:      hash,
		Role:              in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if svcErr.IsDuplicate(err) {
			return nil, svcErr.InvalidOperation("email has already been taken")
		}
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Session is the result of a successful login.
type Session struct {
	User  *db.User
	Token string
}

// Login checks the password and issues a token.
// Unknown email and wrong password both → Unauthorized("invalid credentials").
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		s.appCtx.Logger.Debug("login rejected", "email", email)
		return nil, errInvalidCreds
	}

	token, err := s.IssueToken(u.ID)
	if err != nil {
		return nil, svcErr.Internal(err)
	}
	return &Session{User: u, Token: token}, nil
}

// IssueToken signs an HS256 token for userID that expires after JWT_TTL.
// An empty secret is refused rather than signing forgeable tokens.
func (s *Service) IssueToken(userID uint64) (string, error) {
	if s.appCtx.Config.JWT.Secret == "" {
		return "", errNoSecret
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appCtx.Config.JWT.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.appCtx.Config.JWT.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user.
// Bad signature, expiry or a deleted user → Unauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*db.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, svcErr.Unauthorized("authentication required")
	}

	if s.appCtx.Config.JWT.Secret == "" {
		s.appCtx.Logger.Error("token rejected", "err", errNoSecret)
		return nil, svcErr.Unauthorized("invalid or expired token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.appCtx.Config.JWT.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		s.appCtx.Logger.Debug("token rejected", "err", err)
		return nil, svcErr.Unauthorized("invalid or expired token")
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.Unauthorized("invalid or expired token")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
