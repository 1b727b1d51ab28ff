package local

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/keshav-protos/medai-clinical-view/internal/shared/server/respond"
)

// RegisterRoutes attaches the signed-file read route for local storage.
func (s *Store) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/*storageKey", s.serve)
}

func (s *Store) serve(c *gin.Context) {
	storageKey := c.Param("storageKey")
	if len(storageKey) > 0 && storageKey[0] == '/' {
		storageKey = storageKey[1:]
	}

	exp, err := strconv.ParseInt(c.Query("exp"), 10, 64)
	if err != nil || !s.Verify(storageKey, exp, c.Query("sig")) {
		respond.Error(c, http.StatusForbidden, "forbidden", "invalid or expired signature", nil)
		return
	}

	f, err := s.Open(c.Request.Context(), storageKey)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}
