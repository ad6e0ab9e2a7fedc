package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/aarshiv/grader-api/internal/encoder"
	"github.com/aarshiv/grader-api/internal/middleware"
	"github.com/aarshiv/grader-api/internal/models"
	"github.com/aarshiv/grader-api/internal/services"
	"github.com/aarshiv/grader-api/internal/utils"
	"github.com/gorilla/mux"
)

// Multipart field names, one per document role.
const (
	FieldQuestionPaper = "question_paper"
	FieldAnswerKey     = "answer_key"
	FieldStudentSheets = "student_sheets"
)

// maxFormSize bounds the whole multipart body; individual files are gated
// against the per-file ceiling by the encoder.
const maxFormSize = 64 << 20

type EvaluationHandler struct {
	service services.EvaluationService
	logger  *utils.Logger
}

func NewEvaluationHandler(service services.EvaluationService, logger *utils.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EvaluationHandler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		h.respondError(w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	req := &models.EvaluateRequest{}
	var err error

	if req.QuestionPaper, err = h.readGroup(r, FieldQuestionPaper); err != nil {
		h.respondError(w, err)
		return
	}
	if req.AnswerKey, err = h.readGroup(r, FieldAnswerKey); err != nil {
		h.respondError(w, err)
		return
	}
	if req.StudentSheets, err = h.readGroup(r, FieldStudentSheets); err != nil {
		h.respondError(w, err)
		return
	}

	user := middleware.UserFrom(r.Context())
	item, err := h.service.Evaluate(r.Context(), user, req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, item)
}

func (h *EvaluationHandler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	items, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, items)
}

func (h *EvaluationHandler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	id := mux.Vars(r)["id"]

	item, err := h.service.GetEvaluation(r.Context(), user.ID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, item)
}

func (h *EvaluationHandler) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteEvaluation(r.Context(), user.ID, id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EvaluationHandler) GetBilling(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	info, err := h.service.Billing(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, info)
}

func (h *EvaluationHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	metrics, err := h.service.Dashboard(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, metrics)
}

func (h *EvaluationHandler) ConfigStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.ConfigStatusResponse{
		HasAPIKey: h.service.HasCredential(),
	})
}

// readGroup pulls every file uploaded under one form field, in upload order.
func (h *EvaluationHandler) readGroup(r *http.Request, field string) ([]models.UploadedDocument, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var docs []models.UploadedDocument
	for _, header := range r.MultipartForm.File[field] {
		doc, err := readFile(header)
		if err != nil {
			h.logger.Error("Failed to read uploaded file", "error", err, "filename", header.Filename)
			return nil, utils.NewInternalError("Failed to read uploaded file")
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func readFile(header *multipart.FileHeader) (*models.UploadedDocument, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// Read one byte past the ceiling so the encoder can name the offender.
	data, err := io.ReadAll(io.LimitReader(file, encoder.MaxFileSize+1))
	if err != nil {
		return nil, err
	}

	return &models.UploadedDocument{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *EvaluationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *EvaluationHandler) respondError(w http.ResponseWriter, err error) {
	respondError(w, h.logger, err)
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	var status int
	body := map[string]string{}

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		body["error"] = e.Message
		if e.Action != "" {
			body["action"] = e.Action
		}
	default:
		status = http.StatusInternalServerError
		body["error"] = "Internal server error"
	}

	logger.Error("Request error", "status", status, "error", body["error"])

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
