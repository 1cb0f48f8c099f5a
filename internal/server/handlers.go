package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bstardust/geometalens/internal/exifdate"
	"github.com/bstardust/geometalens/internal/exiftool"
	"github.com/bstardust/geometalens/internal/fileinfo"
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/internal/metadata"
)

// multipartSlack covers multipart headers and boundaries on top of the
// file itself.
const multipartSlack = 1 << 20

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type uploadResponse struct {
	Filename     string           `json:"filename"`
	Filesize     int64            `json:"filesize"`
	Mimetype     string           `json:"mimetype"`
	DetectedType string           `json:"detectedType"`
	UploadTime   string           `json:"uploadTime"`
	Metadata     *metadata.Result `json:"metadata"`
}

type healthResp struct {
	Status    string           `json:"status"`
	Service   string           `json:"service"`
	Timestamp string           `json:"timestamp"`
	ExifTool  *exiftool.Status `json:"exiftool"`
}

type analyzeURLReq struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxSize+multipartSlack)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeTooLarge(w)
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{
			Error:   "No file uploaded",
			Message: "Please select an image file to upload",
		})
		return
	}
	defer file.Close()

	if !s.allow.Allowed(header.Filename) {
		writeJSON(w, http.StatusBadRequest, apiError{
			Error:   "File type not allowed",
			Message: fmt.Sprintf("File type .%s not allowed. Allowed types: %s", fileinfo.Ext(header.Filename), s.allow),
		})
		return
	}
	if header.Size > s.maxSize {
		s.writeTooLarge(w)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeProcessingError(w, http.StatusInternalServerError, err)
		return
	}

	path, err := s.staging.Stage(header.Filename, data)
	if err != nil {
		logger.Error("Failed to stage upload %s: %v", header.Filename, err)
		writeProcessingError(w, http.StatusInternalServerError, err)
		return
	}
	defer s.staging.Remove(path)

	result, err := s.extractor.Extract(r.Context(), path)
	if err != nil {
		status := http.StatusInternalServerError
		if exiftool.IsSetupError(err) {
			status = http.StatusServiceUnavailable
		}
		writeProcessingError(w, status, err)
		return
	}

	logger.Info("Processed %s (%s): %s", header.Filename, humanize.Bytes(uint64(len(data))), result.Outcome())
	writeJSON(w, http.StatusOK, uploadResponse{
		Filename:     header.Filename,
		Filesize:     int64(len(data)),
		Mimetype:     declaredType(header.Header.Get("Content-Type"), header.Filename),
		DetectedType: fileinfo.Sniff(data),
		UploadTime:   s.now().UTC().Format(exifdate.ISOLayout),
		Metadata:     result,
	})
}

func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req analyzeURLReq
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid request body", Message: err.Error()})
			return
		}
	} else {
		req.ImageURL = r.FormValue("imageUrl")
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{
			Error:   "No URL provided",
			Message: "Please provide an image URL",
		})
		return
	}

	writeJSON(w, http.StatusNotImplemented, apiError{
		Error:   "Not implemented",
		Message: "URL analysis feature coming soon",
	})
}

func (s *Server) handleRootHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "GeoMetaLens Backend is running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.extractor.ToolStatus()
	writeJSON(w, http.StatusOK, healthResp{
		Status:    "OK",
		Service:   "Upload Service",
		Timestamp: s.now().UTC().Format(exifdate.ISOLayout),
		ExifTool:  &st,
	})
}

// declaredType prefers the part's Content-Type and falls back to the
// extension table when the client sent none.
func declaredType(contentType, filename string) string {
	if contentType != "" {
		return contentType
	}
	return fileinfo.ContentType(filename)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apiError{Error: "Route not found"})
}

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, apiError{
		Error:   "File too large",
		Message: fmt.Sprintf("Maximum file size is %s", humanize.Bytes(uint64(s.maxSize))),
	})
}

func writeProcessingError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, apiError{Error: "Failed to process image", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to encode response: %v", err)
	}
}
