package identity

import (
	"net/http"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Service) HandleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("invalid register payload", errutil.WithErr(err)))
		return
	}

	user, err := s.Register(c.Request.Context(), RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.Response())
}

// HandleToken exchanges form credentials for a bearer token. Credentials
// arrive as a form body, the way the legacy OAuth2 password flow did.
func (s *Service) HandleToken(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.Error(errutil.ValidationFailed("username and password are required"))
		return
	}

	user, err := s.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.Error(err)
		return
	}

	token, err := s.IssueToken(user)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Service) HandleMe(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	user, err := s.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.Response())
}

func (s *Service) HandleBalance(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	user, err := s.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": user.Balance})
}
