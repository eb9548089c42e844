package feed

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"goldennile/utils"

	"github.com/disintegration/imaging"
)

const (
	feedUploadDir = "./static/postpic"
	thumbWidth    = 300
)

// processAttachment decodes one uploaded image, stores the original and
// a 300px-wide thumbnail, and returns the preview URL.
func processAttachment(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()

	if !utils.SupportedImageTypes[file.Header.Get("Content-Type")] {
		return "", fmt.Errorf("unsupported image type: %s", file.Filename)
	}

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("decode attachment: %w", err)
	}

	name := utils.GenerateRandomString(16)
	thumbDir := filepath.Join(feedUploadDir, "thumb")
	if err := utils.EnsureDir(feedUploadDir); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", fmt.Errorf("thumb dir: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(feedUploadDir, name+".jpg")); err != nil {
		return "", fmt.Errorf("save original: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name+".jpg")); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return "/postpic/" + name + ".jpg", nil
}

// saveAttachments processes every uploaded image under formKey. A post
// can carry zero attachments; an empty form is not an error.
func saveAttachments(r *http.Request, formKey string) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[formKey]
	if len(files) == 0 {
		return nil, nil
	}

	var urls []string
	for _, file := range files {
		url, err := processAttachment(file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
