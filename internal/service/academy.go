package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Skotchmaster/sport_academy/internal/events"
	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/internal/repo"
	"github.com/Skotchmaster/sport_academy/internal/search"
	"github.com/Skotchmaster/sport_academy/pkg/logging"
)

const sideEffectTimeout = 5 * time.Second

var ErrSearchDisabled = errors.New("search index is not configured")

// AcademyService runs one store operation per call. Events and index updates follow a
// successful write and never change its outcome.
type AcademyService struct {
	Repo   repo.Store
	Events events.Publisher
	Index  search.Index
}

func NewAcademyService(store repo.Store, pub events.Publisher, idx search.Index) *AcademyService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &AcademyService{Repo: store, Events: pub, Index: idx}
}

func (s *AcademyService) publish(ctx context.Context, topic, eventType, entityID string, data any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := s.Events.Publish(ctx, topic, entityID, events.New(eventType, entityID, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", eventType, "entity_id", entityID, "error", err)
	}
}

func (s *AcademyService) reindex(ctx context.Context, fn func(ctx context.Context, idx search.Index) error) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := fn(ctx, s.Index); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}
}

// RegisterUser inserts u unless a user with the same email exists, in which case existed is true.
func (s *AcademyService) RegisterUser(ctx context.Context, u models.User) (res models.InsertResult, existed bool, err error) {
	if _, err := s.Repo.FindUserByEmail(ctx, u.Email); err == nil {
		return models.InsertResult{}, true, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.InsertResult{}, false, fmt.Errorf("lookup user: %w", err)
	}

	res, err = s.Repo.InsertUser(ctx, &u)
	if err != nil {
		return models.InsertResult{}, false, err
	}
	s.publish(ctx, events.TopicUsers, events.UserCreated, res.InsertedID, u)
	return res, false, nil
}

func (s *AcademyService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AcademyService) setRole(ctx context.Context, id bson.ObjectID, role string) (models.UpdateResult, error) {
	res, err := s.Repo.SetUserRole(ctx, id, role)
	if err != nil {
		return models.UpdateResult{}, err
	}
	if res.MatchedCount > 0 {
		s.publish(ctx, events.TopicUsers, events.UserRoleChanged, id.Hex(), map[string]string{"role": role})
	}
	return res, nil
}

func (s *AcademyService) PromoteAdmin(ctx context.Context, id bson.ObjectID) (models.UpdateResult, error) {
	return s.setRole(ctx, id, models.RoleAdmin)
}

func (s *AcademyService) PromoteInstructor(ctx context.Context, id bson.ObjectID) (models.UpdateResult, error) {
	return s.setRole(ctx, id, models.RoleInstructor)
}

func (s *AcademyService) DeleteUser(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res, err := s.Repo.DeleteUser(ctx, id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		s.publish(ctx, events.TopicUsers, events.UserDeleted, id.Hex(), nil)
	}
	return res, nil
}

func (s *AcademyService) setStatus(ctx context.Context, id bson.ObjectID, status string) (models.UpdateResult, error) {
	res, err := s.Repo.SetClassStatus(ctx, id, status)
	if err != nil {
		return models.UpdateResult{}, err
	}
	if res.MatchedCount > 0 {
		fields := map[string]any{"status": status}
		s.publish(ctx, events.TopicClasses, events.ClassStatusChanged, id.Hex(), fields)
		s.reindex(ctx, func(ctx context.Context, idx search.Index) error {
			return idx.UpdateClass(ctx, id.Hex(), fields)
		})
	}
	return res, nil
}

// ApproveClass and DenyClass have no transition guard; the last write wins.
func (s *AcademyService) ApproveClass(ctx context.Context, id bson.ObjectID) (models.UpdateResult, error) {
	return s.setStatus(ctx, id, models.StatusApproved)
}

func (s *AcademyService) DenyClass(ctx context.Context, id bson.ObjectID) (models.UpdateResult, error) {
	return s.setStatus(ctx, id, models.StatusDenied)
}

func (s *AcademyService) CreateClass(ctx context.Context, c models.Class) (models.InsertResult, error) {
	if c.Status == "" {
		c.Status = models.StatusPending
	}

	res, err := s.Repo.InsertClass(ctx, &c)
	if err != nil {
		return models.InsertResult{}, err
	}
	s.publish(ctx, events.TopicClasses, events.ClassCreated, res.InsertedID, c)
	s.reindex(ctx, func(ctx context.Context, idx search.Index) error {
		return idx.IndexClass(ctx, c)
	})
	return res, nil
}

func (s *AcademyService) UpdateClass(ctx context.Context, id bson.ObjectID, u models.ClassUpdate) (models.UpdateResult, error) {
	res, err := s.Repo.UpdateClass(ctx, id, u)
	if err != nil {
		return models.UpdateResult{}, err
	}
	if res.MatchedCount > 0 && !u.Empty() {
		fields := u.Fields()
		s.publish(ctx, events.TopicClasses, events.ClassUpdated, id.Hex(), fields)
		s.reindex(ctx, func(ctx context.Context, idx search.Index) error {
			return idx.UpdateClass(ctx, id.Hex(), fields)
		})
	}
	return res, nil
}

// ListClasses returns the catalog, most enrolled first.
func (s *AcademyService) ListClasses(ctx context.Context) ([]models.Class, error) {
	return s.Repo.ListClasses(ctx, models.ClassFilter{SortByEnrolled: true})
}

// ListInstructorClasses filters by instructor email when one is given.
func (s *AcademyService) ListInstructorClasses(ctx context.Context, instructorEmail string) ([]models.Class, error) {
	return s.Repo.ListClasses(ctx, models.ClassFilter{InstructorEmail: instructorEmail})
}

func (s *AcademyService) SearchEnabled() bool {
	return s.Index != nil
}

func (s *AcademyService) SearchClasses(ctx context.Context, q string) (int64, []models.Class, error) {
	if s.Index == nil {
		return 0, nil, ErrSearchDisabled
	}
	return s.Index.Search(ctx, q)
}

// SelectClass stores an enrollment as given. Duplicates are allowed.
func (s *AcademyService) SelectClass(ctx context.Context, sel models.SelectedClass) (models.InsertResult, error) {
	res, err := s.Repo.InsertSelection(ctx, &sel)
	if err != nil {
		return models.InsertResult{}, err
	}
	s.publish(ctx, events.TopicEnrollments, events.ClassSelected, res.InsertedID, sel)
	return res, nil
}

// ListSelections lists every enrollment when email is empty.
func (s *AcademyService) ListSelections(ctx context.Context, email string) ([]models.SelectedClass, error) {
	return s.Repo.ListSelections(ctx, email)
}

func (s *AcademyService) RemoveSelection(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res, err := s.Repo.DeleteSelection(ctx, id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		s.publish(ctx, events.TopicEnrollments, events.SelectionRemoved, id.Hex(), nil)
	}
	return res, nil
}

func (s *AcademyService) SubmitFeedback(ctx context.Context, f models.Feedback) (models.InsertResult, error) {
	res, err := s.Repo.InsertFeedback(ctx, &f)
	if err != nil {
		return models.InsertResult{}, err
	}
	s.publish(ctx, events.TopicFeedback, events.FeedbackSubmitted, res.InsertedID, f)
	return res, nil
}

func (s *AcademyService) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	return s.Repo.ListFeedback(ctx)
}

func (s *AcademyService) Ready(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}
