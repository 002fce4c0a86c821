package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sport_academy/internal/models"
)

// GormRepo stores the academy documents in relational tables.
type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.Class{}, &models.SelectedClass{}, &models.Feedback{})
}

func insertResult(id string) models.InsertResult {
	return models.InsertResult{Acknowledged: true, InsertedID: id}
}

func updateResult(matched, modified int64) models.UpdateResult {
	return models.UpdateResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) InsertUser(ctx context.Context, u *models.User) (models.InsertResult, error) {
	u.ID = NewID()
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(u.ID), nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) SetUserRole(ctx context.Context, id bson.ObjectID, role string) (models.UpdateResult, error) {
	return r.setColumns(ctx, &models.User{}, id, map[string]any{"role": role})
}

func (r *GormRepo) DeleteUser(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&models.User{})
	if res.Error != nil {
		return models.DeleteResult{}, res.Error
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}

func (r *GormRepo) InsertClass(ctx context.Context, c *models.Class) (models.InsertResult, error) {
	c.ID = NewID()
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(c.ID), nil
}

func (r *GormRepo) ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error) {
	q := r.DB.WithContext(ctx).Model(&models.Class{})
	if f.InstructorEmail != "" {
		q = q.Where("instructor_email = ?", f.InstructorEmail)
	}
	if f.SortByEnrolled {
		q = q.Order("enrolled_students DESC")
	}

	classes := make([]models.Class, 0)
	if err := q.Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

var classColumns = map[string]string{
	"className":    "class_name",
	"availableSet": "available_set",
	"price":        "price",
	"classPhoto":   "class_photo",
}

func (r *GormRepo) UpdateClass(ctx context.Context, id bson.ObjectID, u models.ClassUpdate) (models.UpdateResult, error) {
	columns := make(map[string]any, len(classColumns))
	for field, value := range u.Fields() {
		columns[classColumns[field]] = value
	}
	return r.setColumns(ctx, &models.Class{}, id, columns)
}

// setColumns reports counts the way a document store does: a row that already
// holds the new values is matched but not modified.
func (r *GormRepo) setColumns(ctx context.Context, model any, id bson.ObjectID, columns map[string]any) (models.UpdateResult, error) {
	var matched int64
	if err := r.DB.WithContext(ctx).Model(model).Where("id = ?", id.Hex()).Count(&matched).Error; err != nil {
		return models.UpdateResult{}, err
	}
	if matched == 0 || len(columns) == 0 {
		return updateResult(matched, 0), nil
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		changed = append(changed, fmt.Sprintf("(%[1]s IS NULL OR %[1]s <> ?)", name))
		args = append(args, columns[name])
	}

	res := r.DB.WithContext(ctx).Model(model).
		Where("id = ?", id.Hex()).
		Where(strings.Join(changed, " OR "), args...).
		Updates(columns)
	if res.Error != nil {
		return models.UpdateResult{}, res.Error
	}
	return updateResult(matched, res.RowsAffected), nil
}

func (r *GormRepo) SetClassStatus(ctx context.Context, id bson.ObjectID, status string) (models.UpdateResult, error) {
	return r.setColumns(ctx, &models.Class{}, id, map[string]any{"status": status})
}

func (r *GormRepo) InsertSelection(ctx context.Context, s *models.SelectedClass) (models.InsertResult, error) {
	s.ID = NewID()
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(s.ID), nil
}

func (r *GormRepo) ListSelections(ctx context.Context, email string) ([]models.SelectedClass, error) {
	q := r.DB.WithContext(ctx).Model(&models.SelectedClass{})
	if email != "" {
		q = q.Where("email = ?", email)
	}

	items := make([]models.SelectedClass, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) DeleteSelection(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id.Hex()).Delete(&models.SelectedClass{})
	if res.Error != nil {
		return models.DeleteResult{}, res.Error
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}

func (r *GormRepo) InsertFeedback(ctx context.Context, f *models.Feedback) (models.InsertResult, error) {
	f.ID = NewID()
	if err := r.DB.WithContext(ctx).Create(f).Error; err != nil {
		return models.InsertResult{}, err
	}
	return insertResult(f.ID), nil
}

func (r *GormRepo) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	items := make([]models.Feedback, 0)
	if err := r.DB.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepo) Close(context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
