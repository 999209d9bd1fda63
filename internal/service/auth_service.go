package service

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/strengthlab/overload/internal/domain"
)

// FirebaseAuthClient defines the interface for Firebase Auth operations
// This allows mocking for tests
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService handles authentication and user registration
type AuthService struct {
	userRepo     domain.UserRepository
	authClient   FirebaseAuthClient
	tokenService *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	authClient FirebaseAuthClient,
	tokenService *TokenService,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		authClient:   authClient,
		tokenService: tokenService,
	}
}

// LoginOrRegisterRequest contains the request params
type LoginOrRegisterRequest struct {
	FirebaseToken string
	UserAgent     string
	IPAddress     string
}

// LoginOrRegisterResponse contains the user and whether they were newly created
type LoginOrRegisterResponse struct {
	User      *domain.User
	Tokens    *TokenPair
	IsNewUser bool
}

// LoginOrRegister verifies the Firebase token and resolves it to an account:
// an existing user logs in, an email match on a pre-provisioned account gets
// its Firebase UID linked, and anyone else gets a fresh account.
func (s *AuthService) LoginOrRegister(ctx context.Context, req LoginOrRegisterRequest) (*LoginOrRegisterResponse, error) {
	token, err := s.authClient.VerifyIDToken(ctx, req.FirebaseToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = email
	}

	user, err := s.userRepo.GetByFirebaseUID(ctx, firebaseUID)

	if errors.Is(err, domain.ErrNotFound) && email != "" {
		emailUser, emailErr := s.userRepo.GetByEmail(ctx, email)
		if emailErr == nil && emailUser != nil {
			if emailUser.FirebaseUID != "" {
				return nil, fmt.Errorf("email already linked to different account")
			}
			if linkErr := s.userRepo.UpdateFirebaseUID(ctx, emailUser.ID, firebaseUID); linkErr != nil {
				return nil, fmt.Errorf("failed to link firebase account: %w", linkErr)
			}
			emailUser.FirebaseUID = firebaseUID
			user = emailUser
			err = nil
		}
	}

	isNew := false
	if errors.Is(err, domain.ErrNotFound) {
		user = &domain.User{
			FirebaseUID: firebaseUID,
			Email:       email,
			Name:        name,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		isNew = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	tokens, err := s.tokenService.GenerateTokenPair(ctx, user, req.UserAgent, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginOrRegisterResponse{
		User:      user,
		Tokens:    tokens,
		IsNewUser: isNew,
	}, nil
}
