// Package service holds the application's business operations.
package service

import (
	"context"
	"log/slog"
	"time"

	"scaffold/internal/middleware"
	"scaffold/internal/models"
	"scaffold/internal/notifications"
	"scaffold/internal/observability"
	"scaffold/internal/policy"
	"scaffold/internal/repository"
	"scaffold/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher receives post lifecycle events.
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, ev notifications.PostEvent) error
}

// BlogService runs the post lifecycle: every gated operation consults the
// policy before it touches the repository.
type BlogService struct {
	posts  repository.PostRepository
	events EventPublisher
	now    func() time.Time
}

// PostInput is the blog post form.
type PostInput struct {
	Title   string
	Content string
}

// NewBlogService creates a BlogService. events may be nil.
func NewBlogService(posts repository.PostRepository, events EventPublisher) *BlogService {
	return &BlogService{
		posts:  posts,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp posts.
func (s *BlogService) WithClock(now func() time.Time) *BlogService {
	s.now = now
	return s
}

// ListPublished returns live posts, newest first. It is public.
func (s *BlogService) ListPublished(ctx context.Context) (posts []models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "list_published", 0)
	defer func() { endSpan(span, err) }()

	return s.posts.ListPublished(ctx)
}

// ListAll returns every post, newest first, for admins.
func (s *BlogService) ListAll(ctx context.Context, identity models.Identity) (posts []models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "list_all", 0)
	defer func() { endSpan(span, err) }()

	if err := policy.Authorize(identity, policy.ActionViewAdminList, nil).Err("Post", nil); err != nil {
		return nil, err
	}
	return s.posts.ListAll(ctx)
}

// View returns a post if identity may see it. Drafts look absent to
// non-admins.
func (s *BlogService) View(ctx context.Context, identity models.Identity, id uint) (post *models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "view", id)
	defer func() { endSpan(span, err) }()

	post, err = s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(identity, policy.ActionView, post).Err("Post", id); err != nil {
		return nil, err
	}
	return post, nil
}

// Create stores a new draft authored by identity.
func (s *BlogService) Create(ctx context.Context, identity models.Identity, in PostInput) (post *models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "create", 0)
	defer func() { endSpan(span, err) }()

	if err := policy.Authorize(identity, policy.ActionCreate, nil).Err("Post", nil); err != nil {
		return nil, err
	}
	if err := validation.ValidatePost(in.Title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err = s.posts.Create(ctx, identity.Username, in.Title, in.Content, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("post.id", int64(post.ID)))

	observability.PostTransitions.WithLabelValues(string(models.PostStateDraft)).Inc()
	s.publish(ctx, notifications.EventPostCreated, identity, post.ID)
	return post, nil
}

// Update replaces title and content. State and date are untouched.
func (s *BlogService) Update(ctx context.Context, identity models.Identity, id uint, in PostInput) (post *models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "update", id)
	defer func() { endSpan(span, err) }()

	if err := policy.Authorize(identity, policy.ActionUpdate, nil).Err("Post", id); err != nil {
		return nil, err
	}
	if err := validation.ValidatePost(in.Title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post, err = s.posts.Update(ctx, id, in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, notifications.EventPostUpdated, identity, id)
	return post, nil
}

// Delete removes a post. Deleting a missing post is NotFound.
func (s *BlogService) Delete(ctx context.Context, identity models.Identity, id uint) (err error) {
	ctx, span := s.startSpan(ctx, "delete", id)
	defer func() { endSpan(span, err) }()

	if err := policy.Authorize(identity, policy.ActionDelete, nil).Err("Post", id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	observability.PostTransitions.WithLabelValues("deleted").Inc()
	s.publish(ctx, notifications.EventPostDeleted, identity, id)
	return nil
}

// TogglePublish flips Draft and Live and moves the post date to now.
func (s *BlogService) TogglePublish(ctx context.Context, identity models.Identity, id uint) (post *models.BlogPost, err error) {
	ctx, span := s.startSpan(ctx, "toggle_publish", id)
	defer func() { endSpan(span, err) }()

	if err := policy.Authorize(identity, policy.ActionTogglePublish, nil).Err("Post", id); err != nil {
		return nil, err
	}

	post, err = s.posts.TogglePublish(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("post.state", string(post.State())))

	observability.PostTransitions.WithLabelValues(string(post.State())).Inc()
	event := notifications.EventPostUnpublished
	if post.Published {
		event = notifications.EventPostPublished
	}
	s.publish(ctx, event, identity, id)
	return post, nil
}

// startSpan opens a span for one lifecycle operation. id 0 means no post yet.
func (s *BlogService) startSpan(ctx context.Context, action string, id uint) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("post.action", action)}
	if id != 0 {
		attrs = append(attrs, attribute.Int64("post.id", int64(id)))
	}
	return observability.StartSpan(ctx, "BlogService."+action, attrs...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *BlogService) publish(ctx context.Context, eventType string, identity models.Identity, postID uint) {
	if s.events == nil {
		return
	}
	err := s.events.PublishPostEvent(ctx, notifications.PostEvent{
		Type:   eventType,
		PostID: postID,
		Actor:  identity.Username,
		At:     s.now(),
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish post event",
			slog.String("type", eventType),
			slog.Uint64("post_id", uint64(postID)),
			slog.String("error", err.Error()),
		)
	}
}
