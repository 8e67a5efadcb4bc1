package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"recruit-backend/internal/policy"
	"recruit-backend/internal/shared/apperr"
	sharedauth "recruit-backend/internal/shared/auth"
	"recruit-backend/internal/shared/server/respond"
	"recruit-backend/internal/users"
)

// GoogleAccounts links a Google identity to a local account.
type GoogleAccounts interface {
	SignInWithGoogle(ctx context.Context, profile users.GoogleProfile) (users.User, error)
}

// GoogleService handles Google OAuth flows.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	stateTTL    time.Duration
	stateStore  *stateStore
	accounts    GoogleAccounts
	tokenTTL    time.Duration

	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
	userInfo func(ctx context.Context, token *oauth2.Token) (googleUserInfo, error)
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, accounts GoogleAccounts, tokenTTL time.Duration) *GoogleService {
	s := &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: uiRedirect,
		stateTTL:   5 * time.Minute,
		stateStore: newStateStore(),
		accounts:   accounts,
		tokenTTL:   tokenTTL,
	}
	s.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return s.oauthConfig.Exchange(ctx, code)
	}
	s.userInfo = s.fetchUserInfo
	return s
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if s.oauthConfig.ClientID == "" || s.oauthConfig.ClientSecret == "" || s.oauthConfig.RedirectURL == "" {
		respond.Fail(c, apperr.Internal("Google auth not configured", nil))
		return
	}

	role := c.Query("role")
	if role != "" && role != policy.RoleApplicant && role != policy.RoleRecruiter {
		respond.Fail(c, apperr.Validation("Invalid role", apperr.Field("role", "Role must be applicant or recruiter", role)))
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, pendingLogin{role: role, expires: time.Now().Add(s.stateTTL)})

	url := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusFound, url)
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Fail(c, apperr.Validation("Missing state or code"))
		return
	}

	pending, ok := s.stateStore.consume(state, time.Now())
	if !ok {
		respond.Fail(c, apperr.Validation("Invalid or expired state"))
		return
	}

	ctx := c.Request.Context()
	token, err := s.exchange(ctx, code)
	if err != nil {
		respond.Fail(c, apperr.Validation("Failed to exchange code"))
		return
	}

	userInfo, err := s.userInfo(ctx, token)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "Failed to fetch user profile", nil)
		return
	}

	if userInfo.Sub == "" {
		respond.Error(c, http.StatusBadGateway, "Invalid user profile", nil)
		return
	}

	user, err := s.accounts.SignInWithGoogle(ctx, users.GoogleProfile{
		Sub:     userInfo.Sub,
		Email:   userInfo.Email,
		Name:    userInfo.Name,
		Picture: userInfo.Picture,
		Role:    pending.role,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}

	jwt, err := sharedauth.IssueToken(user.ID, user.Role, user.Email, user.Name, s.tokenTTL)
	if err != nil {
		respond.Fail(c, apperr.Internal("Failed to issue token", err))
		return
	}

	redirectURL, err := appendToken(s.uiRedirect, jwt)
	if err != nil {
		respond.Fail(c, apperr.Internal("Failed to redirect", err))
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

// pendingLogin is what start remembers about a login until its callback.
type pendingLogin struct {
	role    string
	expires time.Time
}

type stateStore struct {
	items map[string]pendingLogin
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingLogin)}
}

// put records a login and drops any that already expired.
func (s *stateStore) put(state string, p pendingLogin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, v := range s.items {
		if now.After(v.expires) {
			delete(s.items, k)
		}
	}
	s.items[state] = p
}

// consume returns the pending login for state once.
func (s *stateStore) consume(state string, now time.Time) (pendingLogin, bool) {
	s.mu.Lock()
	p, ok := s.items[state]
	delete(s.items, state)
	s.mu.Unlock()
	if !ok || now.After(p.expires) {
		return pendingLogin{}, false
	}
	return p, true
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
