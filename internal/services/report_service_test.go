package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewlew/lewlew-server/internal/dto"
	"github.com/lewlew/lewlew-server/internal/models"
	"github.com/lewlew/lewlew-server/internal/moderation"
)

type fakeReportStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*models.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[uuid.UUID]*models.Report)}
}

func (s *fakeReportStore) Create(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.PostID == report.PostID && r.ReporterID == report.ReporterID {
			return ErrDuplicateReport
		}
	}
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *fakeReportStore) GetByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *fakeReportStore) Exists(_ context.Context, postID, reporterID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.PostID == postID && r.ReporterID == reporterID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReportStore) Update(_ context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *fakeReportStore) TransitionFromPending(_ context.Context, reportID uuid.UUID, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok || r.Status != models.ReportStatusPending {
		return false, nil
	}
	if v, ok := updates["status"]; ok {
		r.Status = v.(models.ReportStatus)
	}
	if v, ok := updates["ai_prediction"]; ok {
		r.AIPrediction = v.(models.AIPrediction)
	}
	if v, ok := updates["ai_confidence_score"]; ok {
		score := v.(float64)
		r.AIConfidenceScore = &score
	}
	if v, ok := updates["auto_resolved"]; ok {
		r.AutoResolved = v.(bool)
	}
	if v, ok := updates["reviewed_by"]; ok {
		id := v.(uuid.UUID)
		r.ReviewedBy = &id
	}
	if v, ok := updates["reviewed_at"]; ok {
		t := v.(time.Time)
		r.ReviewedAt = &t
	}
	if v, ok := updates["review_comment"]; ok {
		r.ReviewComment = v.(string)
	}
	return true, nil
}

func (s *fakeReportStore) List(_ context.Context, status models.ReportStatus, reason models.ReportReason, limit, offset int) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if (status == "" || r.Status == status) && (reason == "" || r.Reason == reason) {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeReportStore) ListByReporter(_ context.Context, reporterID uuid.UUID, limit, offset int) ([]models.Report, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Report
	for _, r := range s.reports {
		if r.ReporterID == reporterID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeReportStore) Stats(_ context.Context) (*dto.ReportStatsResponse, error) {
	return &dto.ReportStatsResponse{}, nil
}

type fakePosts struct {
	mu      sync.Mutex
	posts   map[uuid.UUID]*models.Post
	deletes []deleteCall
}

type deleteCall struct {
	postID    uuid.UUID
	deletedBy uuid.UUID
	reason    string
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: make(map[uuid.UUID]*models.Post)}
}

func (p *fakePosts) add(post *models.Post) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts[post.ID] = post
}

func (p *fakePosts) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.posts[id]
	if !ok || post.IsDeleted {
		return nil, ErrPostNotFound
	}
	cp := *post
	return &cp, nil
}

func (p *fakePosts) deleteCalls() []deleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]deleteCall(nil), p.deletes...)
}

func (p *fakePosts) SoftDeleteByModeration(_ context.Context, postID, deletedBy uuid.UUID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	post, ok := p.posts[postID]
	if !ok || post.IsDeleted {
		return ErrPostNotFound
	}
	post.IsDeleted = true
	post.DeletedBy = &deletedBy
	post.DeletionReason = reason
	p.deletes = append(p.deletes, deleteCall{postID, deletedBy, reason})
	return nil
}

type notifyCall struct {
	recipient uuid.UUID
	nType     models.NotificationType
	message   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) NotifyPostRemoved(_ context.Context, ownerID, _ uuid.UUID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{ownerID, models.NotificationPostRemoved, message})
	return nil
}

func (n *fakeNotifier) NotifyReportOutcome(_ context.Context, reporterID, _ uuid.UUID, nType models.NotificationType, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{reporterID, nType, message})
	return nil
}

func (n *fakeNotifier) byType(t models.NotificationType) []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notifyCall
	for _, c := range n.calls {
		if c.nType == t {
			out = append(out, c)
		}
	}
	return out
}

type fakeAnalyzer struct {
	result *moderation.Result
	err    error
	called chan struct{}
}

func (a *fakeAnalyzer) AnalyzeImage(_ context.Context, _ string, _ models.ReportReason) (*moderation.Result, error) {
	if a.called != nil {
		close(a.called)
	}
	return a.result, a.err
}

type pipeline struct {
	svc      *ReportService
	store    *fakeReportStore
	posts    *fakePosts
	notifier *fakeNotifier
}

func newPipeline(analyzer ImageAnalyzer) *pipeline {
	store := newFakeReportStore()
	posts := newFakePosts()
	notifier := &fakeNotifier{}
	return &pipeline{
		svc:      NewReportService(store, posts, notifier, analyzer),
		store:    store,
		posts:    posts,
		notifier: notifier,
	}
}

func seedPost(posts *fakePosts) (*models.Post, uuid.UUID) {
	ownerID := uuid.New()
	post := &models.Post{
		ID:       uuid.New(),
		UserID:   ownerID,
		ImageURL: "https://img.example.com/p.jpg",
	}
	posts.add(post)
	return post, ownerID
}

func violationResult(confidence float64, vType string) *moderation.Result {
	return &moderation.Result{
		Verdict: moderation.Verdict{
			IsViolation:   true,
			Confidence:    confidence,
			ViolationType: vType,
		},
	}
}

func TestCreateReportPostNotFound(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	_, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: uuid.New(),
		Reason: "spam",
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreateReportSelfReport(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, ownerID := seedPost(p.posts)
	_, err := p.svc.Create(context.Background(), ownerID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	assert.ErrorIs(t, err, ErrSelfReport)
}

func TestCreateReportDuplicate(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)
	reporterID := uuid.New()

	_, err := p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	require.NoError(t, err)

	_, err = p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "violence",
	})
	assert.ErrorIs(t, err, ErrDuplicateReport)

	// A different reporter may still report the same post.
	_, err = p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	assert.NoError(t, err)
}

func TestCreateReportInvalidReason(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)
	_, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "i-dont-like-it",
	})
	assert.ErrorIs(t, err, ErrInvalidReason)
}

func TestCreateReportDescriptionTooLong(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)

	_, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID:      post.ID,
		Reason:      "spam",
		Description: strings.Repeat("x", 501),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// The boundary itself is accepted.
	_, err = p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID:      post.ID,
		Reason:      "spam",
		Description: strings.Repeat("x", 500),
	})
	require.NoError(t, err)
}

func TestAnalysisOracleFailureKeepsPending(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{err: errors.New("oracle down")})
	post, _ := seedPost(p.posts)

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "inappropriate_content",
	})
	require.NoError(t, err)

	p.svc.performAnalysis(context.Background(), report.ID)

	stored, err := p.store.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Equal(t, models.PredictionError, stored.AIPrediction)
	require.NotNil(t, stored.AIConfidenceScore)
	assert.Zero(t, *stored.AIConfidenceScore)
	require.NotEmpty(t, stored.AIAnalysis, "failure marker not recorded")
	var marker map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.AIAnalysis, &marker))
	assert.Equal(t, "oracle down", marker["error"])
	assert.Equal(t, false, marker["is_violation"])
	assert.NotEmpty(t, marker["timestamp"])
	assert.Empty(t, p.posts.deletes)
	assert.Empty(t, p.notifier.calls)
}

func TestAnalysisBelowAutoThresholdStaysPending(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{result: violationResult(0.79, "nudity")})
	post, _ := seedPost(p.posts)

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "inappropriate_content",
	})
	require.NoError(t, err)

	p.svc.performAnalysis(context.Background(), report.ID)

	stored, _ := p.store.GetByID(context.Background(), report.ID)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Equal(t, models.PredictionViolation, stored.AIPrediction)
	assert.False(t, stored.AutoResolved)
	assert.Empty(t, p.posts.deletes)
}

func TestAnalysisAutoResolvesAtThreshold(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{result: violationResult(0.8, "nudity")})
	post, ownerID := seedPost(p.posts)
	reporterID := uuid.New()

	report, err := p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "inappropriate_content",
	})
	require.NoError(t, err)

	p.svc.performAnalysis(context.Background(), report.ID)

	stored, _ := p.store.GetByID(context.Background(), report.ID)
	assert.Equal(t, models.ReportStatusResolved, stored.Status)
	assert.True(t, stored.AutoResolved)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, models.SystemModeratorID, *stored.ReviewedBy)
	assert.NotNil(t, stored.ReviewedAt)

	require.Len(t, p.posts.deletes, 1)
	del := p.posts.deletes[0]
	assert.Equal(t, post.ID, del.postID)
	assert.Equal(t, models.SystemModeratorID, del.deletedBy)
	assert.Equal(t, "Auto-removed: Inappropriate Content (AI confidence: 0.80)", del.reason)

	removed := p.notifier.byType(models.NotificationPostRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, ownerID, removed[0].recipient)
	assert.Contains(t, removed[0].message, "Inappropriate Content")

	approved := p.notifier.byType(models.NotificationReportApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, reporterID, approved[0].recipient)
	assert.Contains(t, approved[0].message, "Inappropriate Content")
}

func TestAnalysisSafeVerdictRecorded(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{result: &moderation.Result{
		Verdict: moderation.Verdict{IsViolation: false, Confidence: 0},
	}})
	post, _ := seedPost(p.posts)

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	require.NoError(t, err)

	p.svc.performAnalysis(context.Background(), report.ID)

	stored, _ := p.store.GetByID(context.Background(), report.ID)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Equal(t, models.PredictionSafe, stored.AIPrediction)
	assert.Empty(t, p.posts.deletes)
}

func TestAutoResolveLosesRaceToAdmin(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{result: violationResult(0.95, "gore_blood")})
	post, _ := seedPost(p.posts)

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "gore",
	})
	require.NoError(t, err)

	// Admin rejects before the analysis lands.
	_, err = p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{Status: "rejected"})
	require.NoError(t, err)
	p.notifier.calls = nil

	p.svc.performAnalysis(context.Background(), report.ID)

	stored, _ := p.store.GetByID(context.Background(), report.ID)
	assert.Equal(t, models.ReportStatusRejected, stored.Status)
	assert.False(t, stored.AutoResolved)
	assert.Empty(t, p.posts.deletes)
	assert.Empty(t, p.notifier.calls)
}

func TestUpdateStatusResolvedRemovesPostAndNotifies(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, ownerID := seedPost(p.posts)
	reporterID := uuid.New()
	adminID := uuid.New()

	report, err := p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "violence",
	})
	require.NoError(t, err)

	updated, err := p.svc.UpdateStatus(context.Background(), adminID, report.ID, &dto.UpdateReportStatusRequest{
		Status:        "resolved",
		ReviewComment: "clear weapon display",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)
	assert.False(t, updated.AutoResolved)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, adminID, *updated.ReviewedBy)

	require.Len(t, p.posts.deletes, 1)
	assert.Equal(t, adminID, p.posts.deletes[0].deletedBy)
	assert.Equal(t, "Manual removal: Violence or Dangerous Content - clear weapon display", p.posts.deletes[0].reason)

	assert.Len(t, p.notifier.byType(models.NotificationPostRemoved), 1)
	assert.Equal(t, ownerID, p.notifier.byType(models.NotificationPostRemoved)[0].recipient)
	approved := p.notifier.byType(models.NotificationReportApproved)
	require.Len(t, approved, 1)
	assert.Contains(t, approved[0].message, "Violence or Dangerous Content")
}

func TestUpdateStatusRejectedNotifiesReporter(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)
	reporterID := uuid.New()

	report, err := p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	require.NoError(t, err)

	_, err = p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{
		Status:        "rejected",
		ReviewComment: "no scam markers found",
	})
	require.NoError(t, err)

	assert.Empty(t, p.posts.deletes)
	rejected := p.notifier.byType(models.NotificationReportRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, reporterID, rejected[0].recipient)
	assert.Contains(t, rejected[0].message, "no scam markers found")
}

func TestUpdateStatusReviewingNotifiesReporter(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)
	reporterID := uuid.New()

	report, err := p.svc.Create(context.Background(), reporterID, &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "other",
	})
	require.NoError(t, err)

	updated, err := p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{Status: "reviewing"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusReviewing, updated.Status)
	assert.Len(t, p.notifier.byType(models.NotificationReportUnderReview), 1)
}

func TestUpdateStatusRejectsFinalizedAndInvalid(t *testing.T) {
	p := newPipeline(&fakeAnalyzer{})
	post, _ := seedPost(p.posts)

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	require.NoError(t, err)

	_, err = p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{Status: "rejected"})
	require.NoError(t, err)

	_, err = p.svc.UpdateStatus(context.Background(), uuid.New(), report.ID, &dto.UpdateReportStatusRequest{Status: "resolved"})
	assert.ErrorIs(t, err, ErrReportFinalized)
}

func TestWorkerPoolProcessesQueuedReport(t *testing.T) {
	called := make(chan struct{})
	p := newPipeline(&fakeAnalyzer{
		result: violationResult(0.91, "spam"),
		called: called,
	})
	post, _ := seedPost(p.posts)

	p.svc.StartWorkers(2)
	defer p.svc.Stop()

	report, err := p.svc.Create(context.Background(), uuid.New(), &dto.CreateReportRequest{
		PostID: post.ID,
		Reason: "spam",
	})
	require.NoError(t, err)

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis never ran")
	}

	// Wait for the resolution and removal to land.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stored, gerr := p.store.GetByID(context.Background(), report.ID)
		require.NoError(t, gerr)
		deletes := p.posts.deleteCalls()
		if stored.Status == models.ReportStatusResolved && len(deletes) == 1 {
			assert.True(t, stored.AutoResolved)
			assert.Equal(t, fmt.Sprintf("Auto-removed: Spam (AI confidence: %.2f)", 0.91), deletes[0].reason)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("report never auto-resolved")
}
