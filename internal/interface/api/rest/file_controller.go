package rest

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-api/internal/application/ports"
)

// FileController exposes stored attachments read-only.
type FileController struct {
	attachments ports.AttachmentService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	attachments ports.AttachmentService,
	logger *zap.Logger,
) *FileController {
	fc := &FileController{
		attachments: attachments,
		logger:      logger,
	}

	r.GET(RouteFiles, fc.GetFileHandler)
	r.HEAD(RouteFiles, fc.GetFileHandler)

	return fc
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	storagePath := strings.TrimPrefix(c.Param("filepath"), "/")

	f, contentType, err := fc.attachments.Open(storagePath)
	if err != nil {
		writeError(c, fc.logger, "Open()", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(c, fc.logger, "Stat()", err)
		return
	}

	name := path.Base(storagePath)
	c.Header("Content-Type", contentType)
	c.Header("X-Content-Type-Options", "nosniff")
	if !inlineSafe(contentType) {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}

// inlineSafe reports whether a browser may render the content in place.
// SVG can carry script, so only raster images qualify.
func inlineSafe(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "image/") && mt != "image/svg+xml"
}
