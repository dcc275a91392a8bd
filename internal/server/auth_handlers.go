package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "session"
	sessionTTL        = 7 * 24 * time.Hour

	tokenIssuer   = "blogicum"
	tokenAudience = "blogicum-web"
)

// generateToken creates a signed session token for the given user.
func (s *Server) generateToken(userID uint) (string, error) {
	now := nowUTC()
	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
		"jti": uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// parseToken validates a session token's signature, lifetime, issuer, and
// audience, and returns its claims.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Expires:  nowUTC().Add(sessionTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Expires:  nowUTC().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// safeNext keeps post-login redirects on this site. Anything that is not a
// local absolute path falls back to the home page.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// SignupPage renders the registration form.
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.render(c, "auth/signup", fiber.Map{
		"Title":  "Sign up",
		"Form":   &forms.SignupForm{},
		"Errors": map[string]string{},
	})
}

// Signup creates the account and logs the new user straight in.
func (s *Server) Signup(c *fiber.Ctx) error {
	form := new(forms.SignupForm)
	if err := c.BodyParser(form); err != nil {
		return s.render(c, "auth/signup", fiber.Map{
			"Title":     "Sign up",
			"Form":      form,
			"Errors":    map[string]string{},
			"FormError": "Could not read the form",
		})
	}

	if errs := form.Validate(); len(errs) > 0 {
		return s.render(c, "auth/signup", fiber.Map{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": errs,
		})
	}

	user, err := s.userService.Register(c.UserContext(), form)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
			return s.render(c, "auth/signup", fiber.Map{
				"Title":     "Sign up",
				"Form":      form,
				"Errors":    map[string]string{},
				"FormError": appErr.Message,
			})
		}
		return err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.NewInternalError("Failed to issue session", err)
	}
	s.setSessionCookie(c, token)

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		"userID", user.ID,
		"username", user.Username,
	)
	return c.Redirect(profileURL(user.Username), fiber.StatusSeeOther)
}

// LoginPage renders the login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "auth/login", fiber.Map{
		"Title":  "Log in",
		"Form":   &forms.LoginForm{},
		"Errors": map[string]string{},
		"Next":   c.Query("next"),
	})
}

// Login checks credentials and opens a session.
func (s *Server) Login(c *fiber.Ctx) error {
	form := new(forms.LoginForm)
	if err := c.BodyParser(form); err != nil {
		return s.render(c, "auth/login", fiber.Map{
			"Title":     "Log in",
			"Form":      form,
			"Errors":    map[string]string{},
			"Next":      c.Query("next"),
			"FormError": "Could not read the form",
		})
	}

	if errs := form.Validate(); len(errs) > 0 {
		return s.render(c, "auth/login", fiber.Map{
			"Title":  "Log in",
			"Form":   form,
			"Errors": errs,
			"Next":   c.Query("next"),
		})
	}

	user, err := s.userService.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
			return s.render(c, "auth/login", fiber.Map{
				"Title":     "Log in",
				"Form":      form,
				"Errors":    map[string]string{},
				"Next":      c.Query("next"),
				"FormError": appErr.Message,
			})
		}
		return err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.NewInternalError("Failed to issue session", err)
	}
	s.setSessionCookie(c, token)

	middleware.Logger.InfoContext(c.UserContext(), "user logged in",
		"userID", user.ID,
	)
	return c.Redirect(safeNext(c.Query("next")), fiber.StatusSeeOther)
}

// Logout drops the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}
