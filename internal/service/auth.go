package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAdminDisabled      = errors.New("admin login disabled (missing ADMIN_PASSWORD_HASH)")
)

const AdminCookieName = "admin_token"

// AdminAuthService authenticates the single panel operator
type AdminAuthService struct {
	username     string
	passwordHash string
	jwtSecret    string
	jwtExpiry    time.Duration
	isProduction bool
}

func NewAdminAuthService(username, passwordHash, jwtSecret string, jwtExpiry time.Duration, isProduction bool) *AdminAuthService {
	return &AdminAuthService{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
		isProduction: isProduction,
	}
}

// Login checks the operator credentials
func (s *AdminAuthService) Login(username, password string) error {
	if s.passwordHash == "" {
		return ErrAdminDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// compare the password even for a wrong username to keep timing flat
	passOK := ComparePassword(password, s.passwordHash) == nil
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateJWT issues a session token and returns its expiry
func (s *AdminAuthService) GenerateJWT(username string) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.jwtExpiry)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiry, nil
}

// VerifyJWT returns the token subject when the token is valid and belongs to the operator
func (s *AdminAuthService) VerifyJWT(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.Subject != s.username {
		return "", fmt.Errorf("invalid token")
	}

	return claims.Subject, nil
}

func (s *AdminAuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AdminAuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/admin",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
