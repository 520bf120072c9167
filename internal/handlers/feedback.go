package handlers

import (
	"context"
	"math"
	"time"

	"github.com/campus-events/eventhub-api/internal/auth"
	"github.com/campus-events/eventhub-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type FeedbackHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewFeedbackHandler(db *gorm.DB, authHandler *auth.AuthHandler) *FeedbackHandler {
	return &FeedbackHandler{db: db, authHandler: authHandler}
}

type SubmitFeedbackRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
	Body    struct {
		Rating  int    `json:"rating" minimum:"1" maximum:"5" required:"true"`
		Comment string `json:"comment,omitempty"`
	}
}

type SubmitFeedbackResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

// HandleSubmitFeedback records one rating per (event, user). Only attendees
// with a registration may submit, and only once.
func (h *FeedbackHandler) HandleSubmitFeedback(ctx context.Context, input *SubmitFeedbackRequest) (*SubmitFeedbackResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}

	var registration models.Registration
	if err := h.db.Where("event_id = ? AND attendee_id = ?", event.ID, user.ID).First(&registration).Error; err != nil {
		return nil, huma.Error403Forbidden("You are not registered for this event")
	}

	submitted, err := registration.HasSubmittedFeedback(h.db)
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	if submitted {
		return nil, huma.Error409Conflict("You have already submitted feedback for this event")
	}

	feedback := models.Feedback{
		EventID: event.ID,
		UserID:  user.ID,
		Rating:  input.Body.Rating,
		Comment: input.Body.Comment,
	}
	if err := h.db.Create(&feedback).Error; err != nil {
		// The unique index catches a concurrent double-submit.
		return nil, persistError(err, "Failed to save feedback")
	}

	res := &SubmitFeedbackResponse{}
	res.Body.Message = "Thank you for your feedback!"
	return res, nil
}

type AnalyticsRequest struct {
	auth.AuthInput
	EventID uint `path:"id"`
}

type CommentEntry struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type AnalyticsResponse struct {
	Body struct {
		TotalResponses int64          `json:"total_responses"`
		AverageRating  *float64       `json:"average_rating"`
		RatingCounts   [5]int64       `json:"rating_counts" doc:"Responses per star, index 0 = 1 star"`
		RecentComments []CommentEntry `json:"recent_comments"`
	}
}

// HandleAnalytics summarizes feedback for the organizer: response count,
// average rating (rounded to two decimals), per-star histogram and the ten
// most recent comments.
func (h *FeedbackHandler) HandleAnalytics(ctx context.Context, input *AnalyticsRequest) (*AnalyticsResponse, error) {
	user, err := h.authHandler.CurrentUser(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var event models.Event
	if err := h.db.First(&event, input.EventID).Error; err != nil {
		return nil, huma.Error404NotFound("Event not found")
	}
	if event.OrganizerID != user.ID && !user.IsStaff {
		return nil, huma.Error403Forbidden("You are not authorized to view analytics for this event")
	}

	res := &AnalyticsResponse{}

	if err := h.db.Model(&models.Feedback{}).Where("event_id = ?", event.ID).Count(&res.Body.TotalResponses).Error; err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}

	if res.Body.TotalResponses > 0 {
		var avg float64
		err := h.db.Model(&models.Feedback{}).Where("event_id = ?", event.ID).
			Select("AVG(rating)").Scan(&avg).Error
		if err != nil {
			return nil, huma.Error500InternalServerError("Database error")
		}
		rounded := math.Round(avg*100) / 100
		res.Body.AverageRating = &rounded
	}

	var buckets []struct {
		Rating int
		Count  int64
	}
	err = h.db.Model(&models.Feedback{}).Where("event_id = ?", event.ID).
		Select("rating, COUNT(*) as count").Group("rating").Scan(&buckets).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	for _, b := range buckets {
		if b.Rating >= 1 && b.Rating <= 5 {
			res.Body.RatingCounts[b.Rating-1] = b.Count
		}
	}

	var comments []models.Feedback
	err = h.db.Where("event_id = ? AND comment <> ''", event.ID).
		Order("submitted_at DESC").Limit(10).Find(&comments).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Database error")
	}
	res.Body.RecentComments = make([]CommentEntry, 0, len(comments))
	for _, c := range comments {
		res.Body.RecentComments = append(res.Body.RecentComments, CommentEntry{
			Rating:      c.Rating,
			Comment:     c.Comment,
			SubmittedAt: c.SubmittedAt,
		})
	}

	return res, nil
}
