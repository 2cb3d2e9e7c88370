package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
	"github.com/lewlew/lewlew-server/internal/moderation"
)

const analysisQueueSize = 256

// ReportStore persists reports. The GORM implementation lives in
// report_store.go; tests swap in fakes.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Exists(ctx context.Context, postID, reporterID uuid.UUID) (bool, error)
	Update(ctx context.Context, report *models.Report) error
	// TransitionFromPending applies updates only while the report is still
	// pending. Returns false when another actor already moved it on.
	TransitionFromPending(ctx context.Context, reportID uuid.UUID, updates map[string]interface{}) (bool, error)
	List(ctx context.Context, status models.ReportStatus, reason models.ReportReason, limit, offset int) ([]models.Report, int64, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, int64, error)
	Stats(ctx context.Context) (*dto.ReportStatsResponse, error)
}

// PostDelegate is the slice of post behavior the report pipeline needs.
type PostDelegate interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	SoftDeleteByModeration(ctx context.Context, postID, deletedBy uuid.UUID, reason string) error
}

// Notifier delivers moderation outcomes to post owners and reporters.
type Notifier interface {
	NotifyPostRemoved(ctx context.Context, ownerID, postID uuid.UUID, message string) error
	NotifyReportOutcome(ctx context.Context, reporterID, postID uuid.UUID, nType models.NotificationType, message string) error
}

// ImageAnalyzer scores an image against the policy for a report reason.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL string, reason models.ReportReason) (*moderation.Result, error)
}

// ReportService runs the moderation pipeline: reports are created pending,
// queued for image analysis, and either auto-resolved on a high-confidence
// violation or left for an admin.
type ReportService struct {
	store    ReportStore
	posts    PostDelegate
	notifier Notifier
	analyzer ImageAnalyzer

	queue chan uuid.UUID
	wg    sync.WaitGroup
	done  chan struct{}
	once  sync.Once
}

func NewReportService(store ReportStore, posts PostDelegate, notifier Notifier, analyzer ImageAnalyzer) *ReportService {
	return &ReportService{
		store:    store,
		posts:    posts,
		notifier: notifier,
		analyzer: analyzer,
		queue:    make(chan uuid.UUID, analysisQueueSize),
		done:     make(chan struct{}),
	}
}

// StartWorkers launches the analysis worker pool. Call Stop to drain and
// shut it down.
func (s *ReportService) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Stop signals workers to exit and waits for in-flight analyses. Queued but
// unprocessed reports stay pending and remain visible to admins.
func (s *ReportService) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *ReportService) worker() {
	defer s.wg.Done()
	for {
		select {
		case reportID := <-s.queue:
			s.runAnalysis(reportID)
		case <-s.done:
			return
		}
	}
}

func (s *ReportService) runAnalysis(reportID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("report analysis panic", "report_id", reportID, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.performAnalysis(ctx, reportID)
}

// Create files a report against a post and queues it for analysis.
func (s *ReportService) Create(ctx context.Context, reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	reason := models.ReportReason(req.Reason)
	if !reason.Valid() {
		return nil, ErrInvalidReason
	}
	if len(req.Description) > 500 {
		return nil, validationErr("description must be at most 500 characters")
	}

	post, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID == reporterID {
		return nil, ErrSelfReport
	}

	exists, err := s.store.Exists(ctx, req.PostID, reporterID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReport
	}

	report := &models.Report{
		ID:          uuid.New(),
		PostID:      req.PostID,
		ReporterID:  reporterID,
		Reason:      reason,
		Description: req.Description,
		Status:      models.ReportStatusPending,
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, err
	}

	select {
	case s.queue <- report.ID:
	default:
		// Queue full: the report stays pending and shows up in the admin
		// list without an AI verdict.
		slog.Warn("analysis queue full, skipping auto-analysis", "report_id", report.ID)
	}

	return report, nil
}

// performAnalysis scores the reported image and records the verdict. Any
// oracle failure marks the report errored but keeps it pending so a human
// still sees it.
func (s *ReportService) performAnalysis(ctx context.Context, reportID uuid.UUID) {
	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		slog.Error("analysis report lookup", "report_id", reportID, "error", err)
		return
	}
	if report.Status != models.ReportStatusPending {
		return
	}

	post, err := s.posts.GetByID(ctx, report.PostID)
	if err != nil {
		// Post already removed or gone: nothing to analyze.
		slog.Info("analysis skipped, post unavailable", "report_id", reportID, "error", err)
		return
	}
	if post.ImageURL == "" {
		return
	}

	result, err := s.analyzer.AnalyzeImage(ctx, post.ImageURL, report.Reason)
	if err != nil {
		slog.Error("image analysis failed", "report_id", reportID, "error", err)
		zero := 0.0
		report.AIPrediction = models.PredictionError
		report.AIConfidenceScore = &zero
		marker := map[string]interface{}{
			"error":        err.Error(),
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"is_violation": false,
			"fallback":     "manual_review",
		}
		if raw, merr := json.Marshal(marker); merr == nil {
			report.AIAnalysis = datatypes.JSON(raw)
		}
		if uerr := s.store.Update(ctx, report); uerr != nil {
			slog.Error("persist analysis error state", "report_id", reportID, "error", uerr)
		}
		return
	}

	confidence := result.Confidence
	report.AIConfidenceScore = &confidence
	if result.IsViolation {
		report.AIPrediction = models.PredictionViolation
	} else {
		report.AIPrediction = models.PredictionSafe
	}
	if raw, merr := json.Marshal(result); merr == nil {
		report.AIAnalysis = datatypes.JSON(raw)
	}

	if moderation.ShouldAutoRemove(result.Verdict) {
		s.autoResolve(ctx, report, post, result)
		return
	}

	if err := s.store.Update(ctx, report); err != nil {
		slog.Error("persist analysis verdict", "report_id", reportID, "error", err)
	}
}

// autoResolve closes the report and removes the post without a human in the
// loop. The pending-state guard makes the transition race-safe against a
// concurrent admin decision.
func (s *ReportService) autoResolve(ctx context.Context, report *models.Report, post *models.Post, result *moderation.Result) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":              models.ReportStatusResolved,
		"ai_prediction":       models.PredictionViolation,
		"ai_confidence_score": result.Confidence,
		"ai_analysis":         report.AIAnalysis,
		"auto_resolved":       true,
		"reviewed_by":         models.SystemModeratorID,
		"reviewed_at":         now,
		"review_comment":      fmt.Sprintf("Automatically resolved: detected %s with %.0f%% confidence", result.ViolationType, result.Confidence*100),
	}

	claimed, err := s.store.TransitionFromPending(ctx, report.ID, updates)
	if err != nil {
		slog.Error("auto-resolve transition", "report_id", report.ID, "error", err)
		return
	}
	if !claimed {
		// An admin got there first; their decision stands.
		return
	}

	reasonText := report.Reason.DisplayText()
	deletionReason := fmt.Sprintf("Auto-removed: %s (AI confidence: %.2f)", reasonText, result.Confidence)
	if err := s.posts.SoftDeleteByModeration(ctx, post.ID, models.SystemModeratorID, deletionReason); err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			slog.Error("auto-resolve post removal", "report_id", report.ID, "error", err)
		}
	}

	slog.Info("report auto-resolved",
		"report_id", report.ID,
		"post_id", post.ID,
		"violation_type", result.ViolationType,
		"confidence", result.Confidence,
	)

	ownerMsg := fmt.Sprintf("Your post was removed for violating our guidelines: %s", reasonText)
	logNotifyErr(s.notifier.NotifyPostRemoved(ctx, post.UserID, post.ID, ownerMsg), "post_removed")

	reporterMsg := fmt.Sprintf("Your report was reviewed and the post has been removed: %s", reasonText)
	logNotifyErr(s.notifier.NotifyReportOutcome(ctx, report.ReporterID, post.ID, models.NotificationReportApproved, reporterMsg), "report_approved")
}

// UpdateStatus applies an admin decision to a report.
func (s *ReportService) UpdateStatus(ctx context.Context, reviewerID, reportID uuid.UUID, req *dto.UpdateReportStatusRequest) (*models.Report, error) {
	status := models.ReportStatus(req.Status)
	switch status {
	case models.ReportStatusReviewing, models.ReportStatusResolved, models.ReportStatusRejected:
	default:
		return nil, ErrInvalidStatus
	}

	report, err := s.store.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.Terminal() {
		return nil, ErrReportFinalized
	}

	now := time.Now()
	report.Status = status
	report.ReviewedBy = &reviewerID
	report.ReviewedAt = &now
	report.ReviewComment = req.ReviewComment
	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}

	switch status {
	case models.ReportStatusResolved:
		reasonText := report.Reason.DisplayText()
		deletionReason := fmt.Sprintf("Manual removal: %s", reasonText)
		if req.ReviewComment != "" {
			deletionReason += " - " + req.ReviewComment
		}
		var ownerID uuid.UUID
		if post, perr := s.posts.GetByID(ctx, report.PostID); perr == nil {
			ownerID = post.UserID
		}
		if err := s.posts.SoftDeleteByModeration(ctx, report.PostID, reviewerID, deletionReason); err != nil {
			if !errors.Is(err, ErrPostNotFound) {
				slog.Error("manual resolve post removal", "report_id", report.ID, "error", err)
			}
		}
		if ownerID != uuid.Nil {
			ownerMsg := fmt.Sprintf("Your post was removed for violating our guidelines: %s", reasonText)
			logNotifyErr(s.notifier.NotifyPostRemoved(ctx, ownerID, report.PostID, ownerMsg), "post_removed")
		}
		logNotifyErr(s.notifier.NotifyReportOutcome(ctx, report.ReporterID, report.PostID, models.NotificationReportApproved,
			fmt.Sprintf("Your report was reviewed and the post has been removed: %s", reasonText)), "report_approved")

	case models.ReportStatusRejected:
		rejectedMsg := "Your report was reviewed and no violation was found"
		if req.ReviewComment != "" {
			rejectedMsg += ": " + req.ReviewComment
		}
		logNotifyErr(s.notifier.NotifyReportOutcome(ctx, report.ReporterID, report.PostID, models.NotificationReportRejected,
			rejectedMsg), "report_rejected")

	case models.ReportStatusReviewing:
		logNotifyErr(s.notifier.NotifyReportOutcome(ctx, report.ReporterID, report.PostID, models.NotificationReportUnderReview,
			"Your report is being reviewed by our moderation team"), "report_under_review")
	}

	return report, nil
}

func (s *ReportService) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	return s.store.GetByID(ctx, id)
}

func (s *ReportService) List(ctx context.Context, status, reason string, limit, offset int) (*dto.ReportListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var st models.ReportStatus
	if status != "" {
		st = models.ReportStatus(status)
		switch st {
		case models.ReportStatusPending, models.ReportStatusReviewing, models.ReportStatusResolved, models.ReportStatusRejected:
		default:
			return nil, ErrInvalidStatus
		}
	}
	var rs models.ReportReason
	if reason != "" {
		rs = models.ReportReason(reason)
		if !rs.Valid() {
			return nil, ErrInvalidReason
		}
	}

	reports, total, err := s.store.List(ctx, st, rs, limit, offset)
	if err != nil {
		return nil, err
	}
	return reportList(reports, total, limit, offset), nil
}

func (s *ReportService) ListByReporter(ctx context.Context, reporterID uuid.UUID, limit, offset int) (*dto.ReportListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	reports, total, err := s.store.ListByReporter(ctx, reporterID, limit, offset)
	if err != nil {
		return nil, err
	}
	return reportList(reports, total, limit, offset), nil
}

func (s *ReportService) Stats(ctx context.Context) (*dto.ReportStatsResponse, error) {
	return s.store.Stats(ctx)
}

func reportList(reports []models.Report, total int64, limit, offset int) *dto.ReportListResponse {
	resp := &dto.ReportListResponse{
		Reports: make([]dto.ReportResponse, 0, len(reports)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for i := range reports {
		resp.Reports = append(resp.Reports, ReportToResponse(&reports[i]))
	}
	return resp
}

func ReportToResponse(r *models.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:                r.ID,
		PostID:            r.PostID,
		ReporterID:        r.ReporterID,
		Reason:            string(r.Reason),
		Description:       r.Description,
		Status:            string(r.Status),
		AIPrediction:      string(r.AIPrediction),
		AIConfidenceScore: r.AIConfidenceScore,
		AutoResolved:      r.AutoResolved,
		ReviewedBy:        r.ReviewedBy,
		ReviewedAt:        r.ReviewedAt,
		ReviewComment:     r.ReviewComment,
		CreatedAt:         r.CreatedAt,
	}
}
