package services

import (
	"errors"
	"time"

	"testlab/models"
	"testlab/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	store     store.Store
	jwtSecret string
}

func NewAuthService(st store.Store, jwtSecret string) *AuthService {
	return &AuthService{store: st, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Age      int    `json:"age" binding:"omitempty,min=1,max=120"`
	Password string `json:"password" binding:"required,min=6"`
	TestID   uint   `json:"test_id" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var ErrInvalidCredentials = errors.New("invalid email or password")

// Register creates a STUDENT account. Students sign up on their way into a
// specific test, so the referenced test must exist. Admin accounts are
// provisioned out of band.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	if _, err := s.store.FindUserByEmail(req.Email); err == nil {
		return nil, store.ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if _, err := s.store.FindTestWithQuestions(req.TestID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Age:          req.Age,
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the password and issues a 24h token carrying the user id
// and role. The role is fixed at account creation; every authorized request
// carries it explicitly.
func (s *AuthService) Login(req *LoginRequest) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, err
	}

	return signed, user, nil
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	return s.store.FindUserByID(userID)
}
