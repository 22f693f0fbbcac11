package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/store"
)

type AuthHandler struct {
	identity *store.Identity
	log      *logrus.Logger
}

func NewAuthHandler(identity *store.Identity, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		log:      logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, auth gin.HandlerFunc) {
	group := router.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/signup", h.Signup)
		group.POST("/logout", h.Logout)
		group.GET("/me", auth, h.Me)
	}
}

type sessionPayload struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var requestBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Handler: Failed to bind login body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.identity.Login(c.Request.Context(), requestBody.Email, requestBody.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Logged in successfully", sessionPayload{
		User:  user,
		Token: h.identity.Token(),
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var requestBody struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Phone           string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Handler: Failed to bind signup body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.identity.Signup(
		c.Request.Context(),
		requestBody.Name,
		requestBody.Email,
		requestBody.Password,
		requestBody.ConfirmPassword,
		requestBody.Phone,
	)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Account created successfully", sessionPayload{
		User:  user,
		Token: h.identity.Token(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.identity.Logout(c.Request.Context()); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, _ := CurrentUser(c)
	SuccessResponse(c, http.StatusOK, "Session retrieved successfully", user)
}
