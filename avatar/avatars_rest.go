package avatar

import (
	"io"
	"net/http"
	"primor/bizerror"
	"primor/domain/worker"
	"primor/session"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxAvatarSize = 2 << 20

func RegisterAvatarRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(worker.PathWorkers, middleWares...)
	g.GET(":id/avatar", handleGetAvatar)
	g.PUT(":id/avatar", handleSaveAvatar)
}

func handleGetAvatar(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	data, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, DefaultContentType, data)
}

// handleSaveAvatar takes either a multipart "file" field or the raw request body.
func handleSaveAvatar(c *gin.Context) {
	id := bizerror.MustParseIDParam(c, "id")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarSize)

	var src io.Reader = c.Request.Body
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		f, err := file.Open()
		if err != nil {
			panic(err)
		}
		defer f.Close()
		src = f
		contentType = file.Header.Get("Content-Type")
	}

	if err := SaveAvatarFunc(id, src, contentType, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}
