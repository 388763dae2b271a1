package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

// maxUploadBytes caps task images at 5 MiB.
const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type UploadController struct {
	Uploader *utils.S3Uploader
}

func NewUploadController(uploader *utils.S3Uploader) *UploadController {
	return &UploadController{Uploader: uploader}
}

// Image accepts a multipart "image" field, stores it under a random object
// name and returns the URL to embed in a task.
func (c *UploadController) Image(w http.ResponseWriter, r *http.Request) {
	if c.Uploader == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "image field is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Image exceeds 5 MiB"})
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unsupported image type"})
		return
	}

	objectName := fmt.Sprintf("tasks/%s/%s%s", time.Now().Format("2006-01"), uuid.NewString(), ext)
	url, err := c.Uploader.Upload(r.Context(), objectName, file)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Upload failed"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Uploaded", Data: map[string]string{"url": url}})
}
