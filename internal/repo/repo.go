// Package repo is the document store behind the academy API.
// Every method performs a single store operation.
package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Skotchmaster/sport_academy/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid object id")
)

type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) (models.InsertResult, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserRole(ctx context.Context, id bson.ObjectID, role string) (models.UpdateResult, error)
	DeleteUser(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error)

	InsertClass(ctx context.Context, c *models.Class) (models.InsertResult, error)
	ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error)
	UpdateClass(ctx context.Context, id bson.ObjectID, u models.ClassUpdate) (models.UpdateResult, error)
	SetClassStatus(ctx context.Context, id bson.ObjectID, status string) (models.UpdateResult, error)

	InsertSelection(ctx context.Context, s *models.SelectedClass) (models.InsertResult, error)
	ListSelections(ctx context.Context, email string) ([]models.SelectedClass, error)
	DeleteSelection(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error)

	InsertFeedback(ctx context.Context, f *models.Feedback) (models.InsertResult, error)
	ListFeedback(ctx context.Context) ([]models.Feedback, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID accepts only 24 character hex object ids.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w %q", ErrInvalidID, hex)
	}
	return id, nil
}

func NewID() string {
	return bson.NewObjectID().Hex()
}
