package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Service) HandleListAds(c *gin.Context) {
	ads, err := s.ListActiveAds(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]AdResponse, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.Response())
	}
	c.JSON(http.StatusOK, out)
}
