package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aarshiv/grader-api/internal/billing"
	"github.com/aarshiv/grader-api/internal/composer"
	"github.com/aarshiv/grader-api/internal/config"
	"github.com/aarshiv/grader-api/internal/encoder"
	"github.com/aarshiv/grader-api/internal/grader"
	"github.com/aarshiv/grader-api/internal/models"
	"github.com/aarshiv/grader-api/internal/repository"
	"github.com/aarshiv/grader-api/internal/storage"
	"github.com/aarshiv/grader-api/internal/utils"
)

type EvaluationService interface {
	Evaluate(ctx context.Context, user *models.User, req *models.EvaluateRequest) (*models.HistoryItem, error)
	History(ctx context.Context, userID string) ([]models.HistoryItem, error)
	GetEvaluation(ctx context.Context, userID, id string) (*models.HistoryItem, error)
	DeleteEvaluation(ctx context.Context, userID, id string) error
	Billing(ctx context.Context, userID string) (*models.BillingInfo, error)
	Dashboard(ctx context.Context, userID string) (*models.DashboardMetrics, error)
	HasCredential() bool
}

type evaluationService struct {
	repo    repository.Repository
	storage storage.Storage
	grader  grader.Grader
	cfg     *config.Config
	logger  *utils.Logger

	// One evaluation in flight per user. A second submission while the first
	// is outstanding gets a conflict, mirroring the disabled submit button.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(repo repository.Repository, cfg *config.Config, logger *utils.Logger) EvaluationService {
	s3Storage, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	geminiGrader := grader.NewGeminiGrader(cfg.GeminiAPIKey, cfg.GeminiModel, logger)

	return &evaluationService{
		repo:     repo,
		storage:  s3Storage,
		grader:   geminiGrader,
		cfg:      cfg,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

func (s *evaluationService) HasCredential() bool {
	return s.cfg.GeminiAPIKey != ""
}

func (s *evaluationService) Evaluate(ctx context.Context, user *models.User, req *models.EvaluateRequest) (*models.HistoryItem, error) {
	if len(req.QuestionPaper) == 0 || len(req.StudentSheets) == 0 {
		return nil, utils.NewBadRequestError("A question paper and at least one student sheet are required")
	}

	if !s.acquire(user.ID) {
		return nil, utils.NewConflictError("An evaluation is already in progress for this account")
	}
	defer s.release(user.ID)

	// Encoding has no ordering dependency between files, but all three groups
	// must be complete and stable before the request is composed.
	questionPaper, err := encodeGroup(req.QuestionPaper)
	if err != nil {
		return nil, err
	}
	answerKey, err := encodeGroup(req.AnswerKey)
	if err != nil {
		return nil, err
	}
	studentSheets, err := encodeGroup(req.StudentSheets)
	if err != nil {
		return nil, err
	}

	sheets := 0
	for _, doc := range studentSheets {
		sheets += doc.Pages
	}

	parts := composer.Compose(questionPaper, answerKey, studentSheets)

	s.logger.Info("Starting evaluation",
		"user_id", user.ID,
		"question_paper_pages", len(questionPaper),
		"key_pages", len(answerKey),
		"student_sheets", sheets)

	report, err := s.grader.Evaluate(ctx, parts)
	if err != nil {
		return nil, s.translateGraderError(err, user.ID)
	}

	report = grader.Reconcile(report)

	item := &models.HistoryItem{
		ID:          utils.GenerateID(),
		UserID:      user.ID,
		Timestamp:   time.Now().UnixMilli(),
		Report:      report,
		SheetsCount: sheets,
	}

	s.archiveScans(ctx, item.ID, questionPaper, answerKey, studentSheets)

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to save evaluation", "error", err, "id", item.ID)
		// Attempt to clean up the archived scans
		_ = s.storage.DeletePrefix(ctx, storage.ScanPrefix(item.ID))
		return nil, utils.NewInternalError("Failed to save evaluation record")
	}

	s.logger.Info("Evaluation completed",
		"id", item.ID,
		"student", report.StudentInfo.Name,
		"total_score", report.TotalScore,
		"max_score", report.MaxScore)

	return item, nil
}

func (s *evaluationService) History(ctx context.Context, userID string) ([]models.HistoryItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list evaluations", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to retrieve evaluation history")
	}
	return items, nil
}

func (s *evaluationService) GetEvaluation(ctx context.Context, userID, id string) (*models.HistoryItem, error) {
	item, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		s.logger.Error("Failed to get evaluation", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve evaluation")
	}
	if item == nil {
		return nil, utils.NewNotFoundError("Evaluation not found")
	}
	return item, nil
}

func (s *evaluationService) DeleteEvaluation(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.NewNotFoundError("Evaluation not found")
		}
		s.logger.Error("Failed to delete evaluation", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete evaluation")
	}

	// Archived scans are best-effort; the record is already gone.
	if err := s.storage.DeletePrefix(ctx, storage.ScanPrefix(id)); err != nil {
		s.logger.Warn("Failed to delete archived scans", "error", err, "id", id)
	}

	return nil
}

func (s *evaluationService) Billing(ctx context.Context, userID string) (*models.BillingInfo, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load history for billing", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to compute billing")
	}
	info := billing.Info(items, s.cfg.CostPerSheet, time.Now())
	return &info, nil
}

func (s *evaluationService) Dashboard(ctx context.Context, userID string) (*models.DashboardMetrics, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load history for dashboard", "error", err, "user_id", userID)
		return nil, utils.NewInternalError("Failed to compute dashboard metrics")
	}
	metrics := billing.Metrics(items, s.cfg.CostPerSheet, time.Now())
	return &metrics, nil
}

func (s *evaluationService) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *evaluationService) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

// encodeGroup encodes a document group concurrently and joins before
// returning; the first validation failure wins.
func encodeGroup(docs []models.UploadedDocument) ([]*encoder.Payload, error) {
	payloads := make([]*encoder.Payload, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payloads[i], errs[i] = encoder.Encode(docs[i].Filename, docs[i].ContentType, docs[i].Data)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return payloads, nil
}

func (s *evaluationService) archiveScans(ctx context.Context, evaluationID string, questionPaper, answerKey, studentSheets []*encoder.Payload) {
	groups := []struct {
		role string
		docs []*encoder.Payload
	}{
		{"question-paper", questionPaper},
		{"answer-key", answerKey},
		{"student-sheet", studentSheets},
	}

	for _, group := range groups {
		for i, doc := range group.docs {
			data, err := doc.Decode()
			if err != nil {
				s.logger.Warn("Failed to decode payload for archiving", "error", err, "file", doc.Filename)
				continue
			}
			key := storage.ScanKey(evaluationID, group.role, i+1)
			if err := s.storage.Upload(ctx, key, data, doc.MediaType); err != nil {
				s.logger.Warn("Failed to archive scan", "error", err, "key", key)
			}
		}
	}
}

func (s *evaluationService) translateGraderError(err error, userID string) error {
	var cfgErr *grader.ConfigurationError
	var emptyErr *grader.EmptyResponseError
	var malformedErr *grader.MalformedResponseError
	var upstreamErr *grader.UpstreamError

	switch {
	case errors.As(err, &cfgErr):
		return utils.NewConfigurationError("No AI API key is configured. Configure a key before evaluating")
	case errors.As(err, &emptyErr):
		s.logger.Error("Model returned empty response", "user_id", userID)
		return utils.NewBadGatewayError("The model returned an empty response. Please retry")
	case errors.As(err, &malformedErr):
		s.logger.Error("Model returned malformed report", "error", err, "user_id", userID)
		return utils.NewBadGatewayError(fmt.Sprintf("The model returned an unusable report: %v", malformedErr.Err))
	case errors.As(err, &upstreamErr):
		s.logger.Error("Model API failure", "status", upstreamErr.StatusCode, "user_id", userID)
		return utils.NewBadGatewayError(fmt.Sprintf("The model API failed with status %d", upstreamErr.StatusCode))
	default:
		s.logger.Error("Evaluation failed", "error", err, "user_id", userID)
		return utils.NewInternalError("Evaluation failed")
	}
}
