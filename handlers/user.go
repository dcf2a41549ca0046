package handlers

import (
	"net/http"

	"wink/apperr"
	"wink/middleware"
	"wink/models"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 5 << 20

type winkRequest struct {
	MyID         string `json:"myId"`
	TargetUserID string `json:"targetUserId"`
}

// profileRequest names every field a profile edit may change. Anything else
// in the body is ignored.
type profileRequest struct {
	UserID    string      `json:"userId"`
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Age       optionalInt `json:"age"`
	Gender    *string     `json:"gender"`
	Bio       *string     `json:"bio"`
	Interests *string     `json:"interests"`
	Image     *string     `json:"image"`
}

func (r profileRequest) patch() models.ProfilePatch {
	return models.ProfilePatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       r.Age.ptr(),
		Gender:    r.Gender,
		Bio:       r.Bio,
		Interests: r.Interests,
		Image:     r.Image,
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	users, err := h.svc.Discovery.ListCandidates(ctx, c.Query("currentUserId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Wink(c *gin.Context) {
	var req winkRequest
	if !h.bind(c, &req) {
		return
	}
	if err := middleware.CheckActor(c, req.MyID); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.svc.Matching.RecordLike(ctx, req.MyID, req.TargetUserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if res.Matched {
		c.JSON(http.StatusOK, gin.H{
			"match":       true,
			"message":     "It's a Match! 💖",
			"matchedUser": res.Target,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": false, "message": "Wink sent! 😉"})
}

func (h *Handler) GetMatches(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	matches, err := h.svc.Profile.Matches(ctx, c.Query("userId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !h.bind(c, &req) {
		return
	}
	if err := middleware.CheckActor(c, req.UserID); err != nil {
		h.writeError(c, err)
		return
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.svc.Profile.UpdateProfile(ctx, req.UserID, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated!", "user": u.Session()})
}

// UploadImage takes a multipart form with userId and an image file.
func (h *Handler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+1<<20)

	userID := c.PostForm("userId")
	if err := middleware.CheckActor(c, userID); err != nil {
		h.writeError(c, err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		h.writeError(c, apperr.Validation("image is required"))
		return
	}
	if header.Size > maxImageBytes {
		h.writeError(c, apperr.Validation("image must be at most 5MB"))
		return
	}
	file, err := header.Open()
	if err != nil {
		h.writeError(c, apperr.Validation("image could not be read"))
		return
	}
	defer file.Close()

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.svc.Profile.UploadImage(ctx, userID, file)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo updated!", "user": u.Session()})
}
