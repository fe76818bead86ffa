package handler

import (
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"faqbot-go/internal/config"
	"faqbot-go/pkg/storage"

	"github.com/gin-gonic/gin"
)

// StaticHandler 承接所有未匹配 API 路由的路径，作为静态资源响应器。
// 启用 MinIO 时从对象存储桶读取，否则回退到本地目录。
type StaticHandler struct {
	staticCfg config.StaticConfig
	minioCfg  config.MinIOConfig
}

// NewStaticHandler 创建一个新的 StaticHandler。
func NewStaticHandler(staticCfg config.StaticConfig, minioCfg config.MinIOConfig) *StaticHandler {
	return &StaticHandler{
		staticCfg: staticCfg,
		minioCfg:  minioCfg,
	}
}

// Serve 是注册到 NoRoute 的处理函数。
func (h *StaticHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	name := strings.TrimPrefix(path.Clean(c.Request.URL.Path), "/")
	if name == "" || name == "." {
		name = "index.html"
	}

	if h.minioCfg.Enabled && storage.MinioClient != nil {
		h.serveFromMinIO(c, name)
		return
	}
	h.serveFromDir(c, name)
}

func (h *StaticHandler) serveFromDir(c *gin.Context, name string) {
	full := filepath.Join(h.staticCfg.Dir, filepath.FromSlash(name))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	setAssetHeaders(c)
	c.File(full)
}

func (h *StaticHandler) serveFromMinIO(c *gin.Context, name string) {
	obj, err := storage.GetObject(c.Request.Context(), h.minioCfg.BucketName, name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	defer obj.Close()

	// 对象不存在的错误在 Stat 时才会暴露
	stat, err := obj.Stat()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	setAssetHeaders(c)
	c.DataFromReader(http.StatusOK, stat.Size, contentType, obj, nil)
}

// setAssetHeaders 为成功的静态资源响应追加长效缓存头。
func setAssetHeaders(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
}
