package handlers

import (
	"net/http"

	"wink/services"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Age       optionalInt `json:"age"`
	Gender    string      `json:"gender"`
	Bio       string      `json:"bio"`
	Interests string      `json:"interests"`
	Image     string      `json:"image"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.svc.Auth.Signup(ctx, services.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Age:       req.Age.Value,
		Gender:    req.Gender,
		Bio:       req.Bio,
		Interests: req.Interests,
		Image:     req.Image,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info(h.log.WithUserID(ctx, u.ID.Hex()), "user signed up")
	c.JSON(http.StatusCreated, gin.H{"message": "Account created! 🌹"})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	token, u, err := h.svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  u.Session(),
	})
}
