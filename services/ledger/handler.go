package ledger

import (
	"net/http"
	"strconv"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type viewAdRequest struct {
	AdID int64 `json:"ad_id" binding:"required"`
}

type submitApplicationRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	PhotoURL    *string `json:"photo_url"`
	VideoURL    *string `json:"video_url"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Service) HandleViewAd(c *gin.Context) {
	var req viewAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("ad_id is required", errutil.WithErr(err)))
		return
	}

	principal, _ := middleware.PrincipalFrom(c)

	view, err := s.RecordAdView(c.Request.Context(), principal.UserID, req.AdID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, view.Response())
}

func (s *Service) HandleCost(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cost":    s.Cost(),
		"message": "Стоимость отправки заявки: 50 монет",
	})
}

func (s *Service) HandleSubmitApplication(c *gin.Context) {
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("title and description are required", errutil.WithErr(err)))
		return
	}

	principal, _ := middleware.PrincipalFrom(c)

	application, err := s.SubmitApplication(c.Request.Context(), principal.UserID, SubmitApplicationInput{
		Title:       req.Title,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, application.Response())
}

func (s *Service) HandleListMyApplications(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	applications, err := s.ListUserApplications(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, applicationResponses(applications))
}

func (s *Service) HandleListAllApplications(c *gin.Context) {
	applications, err := s.ListApplications(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, applicationResponses(applications))
}

func (s *Service) HandleUpdateApplicationStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errutil.ValidationFailed("invalid application id"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.ValidationFailed("status is required", errutil.WithErr(err)))
		return
	}

	application, err := s.UpdateApplicationStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, application.Response())
}

func applicationResponses(applications []*Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		out = append(out, a.Response())
	}
	return out
}
