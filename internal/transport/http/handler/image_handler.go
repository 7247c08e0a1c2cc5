package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"sweet-shop/internal/core/storage"
	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/catalog"
	"sweet-shop/internal/transport/http/ez"
	resp "sweet-shop/internal/transport/http/response"
	"sweet-shop/internal/transport/http/router"
	"sweet-shop/pkg/utils"
)

// ImageStore 图片对象存储；nil 表示未配置
type ImageStore interface {
	Put(ctx context.Context, obj storage.Object) (string, error)
}

var allowedImages = []string{"image/jpeg", "image/png", "image/webp"}

// ImageHandler POST /admin/v1/sweets/:id/image
type ImageHandler struct {
	catalog  *catalog.Service
	store    ImageStore
	maxBytes int64
}

func NewImageHandler(c *catalog.Service, store ImageStore, maxUploadMB int) *ImageHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ImageHandler{catalog: c, store: store, maxBytes: int64(maxUploadMB) << 20}
}

func (h *ImageHandler) MountAdmin(admin *gin.RouterGroup, _ router.Guards) {
	ez.POSTFILES(ez.New(admin), "/sweets/:id/image", "file", h.upload)
}

func (h *ImageHandler) upload(c *gin.Context, files []*multipart.FileHeader) (any, error) {
	if h.store == nil {
		return nil, ez.Unavailable("image storage is not configured")
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if !utils.IsID(id) {
		return nil, domain.NewValidationError("id", "must be a valid id")
	}
	fh := files[0]
	if fh.Size > h.maxBytes {
		return nil, &ez.AErr{Code: resp.CodeTooLarge, Msg: fmt.Sprintf("image exceeds %d bytes", h.maxBytes)}
	}
	// 先确认商品存在，避免上传孤儿对象
	if _, err := h.catalog.Get(ctx, id); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, ez.BadRequest("cannot read uploaded file")
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, ez.BadRequest("cannot read uploaded file")
	}
	if !mimetype.EqualsAny(mt.String(), allowedImages...) {
		return nil, domain.NewValidationError("file", "must be a jpeg, png or webp image")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, ez.Internal("rewind upload", err)
	}

	url, err := h.store.Put(ctx, storage.Object{
		Key:         id + "/" + utils.NewID() + mt.Extension(),
		ContentType: mt.String(),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return nil, ez.Internal("upload image", err)
	}
	return h.catalog.SetImage(ctx, id, url)
}
