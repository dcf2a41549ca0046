package services

import (
	"context"
	"errors"
	"strings"

	"wink/apperr"
	"wink/auth"
	"wink/models"
	"wink/store"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects longer input.
const maxPasswordBytes = 72

type SignupInput struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Age       int    `json:"age" validate:"required,min=18,max=120"`
	Gender    string `json:"gender" validate:"required"`
	Bio       string `json:"bio" validate:"max=500"`
	Interests string `json:"interests" validate:"max=300"`
	Image     string `json:"image" validate:"omitempty,url"`
}

type AuthService struct {
	users      store.UserStore
	tokens     *auth.Issuer
	bcryptCost int
}

func NewAuthService(users store.UserStore, tokens *auth.Issuer, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Image = strings.TrimSpace(in.Image)

	if in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("Email and Password are required")
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Store(err, "hash password")
	}

	u := &models.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
		Gender:    in.Gender,
		Bio:       in.Bio,
		Interests: in.Interests,
		Image:     in.Image,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperr.Validation("User already exists")
		}
		return nil, apperr.Store(err, "create user")
	}
	return u, nil
}

// Login returns a signed token for valid credentials. Unknown email and
// wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation("Please provide email and password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return "", nil, apperr.Store(err, "find user")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, apperr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(u.ID.Hex())
	if err != nil {
		return "", nil, apperr.Store(err, "issue token")
	}
	return token, u, nil
}
