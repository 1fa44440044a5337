package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"numbersapi/internal/middleware"
	"numbersapi/internal/models"
	"numbersapi/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func authResponse(res *services.AuthResult) models.AuthResponse {
	return models.AuthResponse{OK: true, Token: res.Token, User: res.User.Summary()}
}

// @Summary      Начать регистрацию
// @Description  Sends a one-time registration code to the email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.CodeRequest  true  "email, fullName, phone, company"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register/start [post]
func (h *AuthHandler) RegisterStart(c *gin.Context) {
	var req models.CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and fullName required"})
		return
	}

	err := h.authService.StartRegistration(c.Request.Context(), services.RegistrationInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Company:  req.Company,
	})
	if err != nil {
		respondError(c, "[auth][register-start]", err, "Failed to start registration")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Подтвердить регистрацию
// @Description  Consumes the registration code, creates the account and returns a token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.CodeRequest  true  "email, code, fullName, phone, company"
// @Success      200   {object}  models.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register/verify [post]
func (h *AuthHandler) RegisterVerify(c *gin.Context) {
	var req models.CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.FullName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	res, err := h.authService.CompleteRegistration(c.Request.Context(), services.RegistrationInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Company:  req.Company,
	}, req.Code)
	if err != nil {
		respondError(c, "[auth][register-verify]", err, "Failed to complete registration")
		return
	}
	c.JSON(http.StatusOK, authResponse(res))
}

// @Summary      Начать вход
// @Description  Sends a one-time login code to a registered email
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.CodeRequest  true  "email"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/login/start [post]
func (h *AuthHandler) LoginStart(c *gin.Context) {
	var req models.CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
		return
	}

	err := h.authService.StartLogin(c.Request.Context(), req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No account for that email"})
		return
	}
	if err != nil {
		respondError(c, "[auth][login-start]", err, "Failed to start login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Подтвердить вход
// @Description  Consumes the login code and returns a token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.CodeRequest  true  "email, code"
// @Success      200   {object}  models.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/login/verify [post]
func (h *AuthHandler) LoginVerify(c *gin.Context) {
	var req models.CodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	res, err := h.authService.CompleteLogin(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, "[auth][login-verify]", err, "Failed to complete login")
		return
	}
	log.Printf("[auth][login] code login OK userID=%d", res.User.ID)
	c.JSON(http.StatusOK, authResponse(res))
}

// @Summary      Регистрация по паролю
// @Description  Creates an account with a password (password auth mode)
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "email, fullName, password"
// @Success      201   {object}  models.AuthResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email, fullName and password required"})
		return
	}

	res, err := h.authService.RegisterWithPassword(c.Request.Context(), services.RegistrationInput{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Company:  req.Company,
	}, req.Password)
	if err != nil {
		respondError(c, "[auth][register]", err, "Failed to register")
		return
	}
	c.JSON(http.StatusCreated, authResponse(res))
}

// @Summary      Вход по паролю
// @Description  Checks the password and returns a token (password auth mode)
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  models.AuthResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		return
	}

	res, err := h.authService.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "[auth][login]", err, "Failed to log in")
		return
	}
	log.Printf("[auth][login] password OK userID=%d", res.User.ID)
	c.JSON(http.StatusOK, authResponse(res))
}

// @Summary      Текущий пользователь
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]models.UserSummary
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, err := h.authService.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, "[auth][me]", err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Summary()})
}
