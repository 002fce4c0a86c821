package repo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Skotchmaster/sport_academy/internal/models"
)

const (
	DefaultDatabase = "sportAcademies"

	usersCollection      = "user"
	classesCollection    = "allClass"
	selectionsCollection = "selectClass"
	feedbackCollection   = "feedback"
)

type userDoc struct {
	ID    bson.ObjectID `bson:"_id,omitempty"`
	Name  string        `bson:"name,omitempty"`
	Email string        `bson:"email"`
	Photo string        `bson:"photo,omitempty"`
	Role  string        `bson:"role,omitempty"`
}

type classDoc struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	ClassName        string        `bson:"className"`
	ClassPhoto       string        `bson:"classPhoto"`
	InstructorName   string        `bson:"instructorName,omitempty"`
	InstructorEmail  string        `bson:"instructorEmail"`
	AvailableSet     int           `bson:"availableSet"`
	Price            float64       `bson:"price"`
	Status           string        `bson:"status"`
	EnrolledStudents int           `bson:"enrolledStudents"`
}

type selectionDoc struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Email           string        `bson:"email"`
	ClassID         string        `bson:"classId,omitempty"`
	ClassName       string        `bson:"className"`
	ClassPhoto      string        `bson:"classPhoto,omitempty"`
	InstructorName  string        `bson:"instructorName,omitempty"`
	InstructorEmail string        `bson:"instructorEmail,omitempty"`
	AvailableSet    int           `bson:"availableSet"`
	Price           float64       `bson:"price"`
}

type feedbackDoc struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	ClassID string        `bson:"classId,omitempty"`
	Email   string        `bson:"email,omitempty"`
	Content string        `bson:"content"`
}

// MongoRepo keeps each resource in its own collection of the academy database.
type MongoRepo struct {
	client *mongo.Client

	users      *mongo.Collection
	classes    *mongo.Collection
	selections *mongo.Collection
	feedback   *mongo.Collection
}

func NewMongoRepo(client *mongo.Client, dbName string) *MongoRepo {
	if dbName == "" {
		dbName = DefaultDatabase
	}
	db := client.Database(dbName)
	return &MongoRepo{
		client:     client,
		users:      db.Collection(usersCollection),
		classes:    db.Collection(classesCollection),
		selections: db.Collection(selectionsCollection),
		feedback:   db.Collection(feedbackCollection),
	}
}

func fromInsert(res *mongo.InsertOneResult) models.InsertResult {
	out := models.InsertResult{Acknowledged: res.Acknowledged}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		out.InsertedID = id.Hex()
	}
	return out
}

func fromUpdate(res *mongo.UpdateResult) models.UpdateResult {
	out := models.UpdateResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if id, ok := res.UpsertedID.(bson.ObjectID); ok {
		hex := id.Hex()
		out.UpsertedID = &hex
	}
	return out
}

func fromDelete(res *mongo.DeleteResult) models.DeleteResult {
	return models.DeleteResult{Acknowledged: res.Acknowledged, DeletedCount: res.DeletedCount}
}

func (r *MongoRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &models.User{ID: doc.ID.Hex(), Name: doc.Name, Email: doc.Email, Photo: doc.Photo, Role: doc.Role}, nil
}

func (r *MongoRepo) InsertUser(ctx context.Context, u *models.User) (models.InsertResult, error) {
	doc := userDoc{ID: bson.NewObjectID(), Name: u.Name, Email: u.Email, Photo: u.Photo, Role: u.Role}
	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	return fromInsert(res), nil
}

func (r *MongoRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := r.users.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.User{ID: d.ID.Hex(), Name: d.Name, Email: d.Email, Photo: d.Photo, Role: d.Role})
	}
	return users, nil
}

func (r *MongoRepo) setField(ctx context.Context, coll *mongo.Collection, id bson.ObjectID, field, value string) (models.UpdateResult, error) {
	res, err := coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}},
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update %s.%s: %w", coll.Name(), field, err)
	}
	return fromUpdate(res), nil
}

func (r *MongoRepo) SetUserRole(ctx context.Context, id bson.ObjectID, role string) (models.UpdateResult, error) {
	return r.setField(ctx, r.users, id, "role", role)
}

func (r *MongoRepo) DeleteUser(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res, err := r.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete user: %w", err)
	}
	return fromDelete(res), nil
}

func classFromDoc(d classDoc) models.Class {
	return models.Class{
		ID:               d.ID.Hex(),
		ClassName:        d.ClassName,
		ClassPhoto:       d.ClassPhoto,
		InstructorName:   d.InstructorName,
		InstructorEmail:  d.InstructorEmail,
		AvailableSet:     d.AvailableSet,
		Price:            d.Price,
		Status:           d.Status,
		EnrolledStudents: d.EnrolledStudents,
	}
}

func (r *MongoRepo) InsertClass(ctx context.Context, c *models.Class) (models.InsertResult, error) {
	doc := classDoc{
		ID:               bson.NewObjectID(),
		ClassName:        c.ClassName,
		ClassPhoto:       c.ClassPhoto,
		InstructorName:   c.InstructorName,
		InstructorEmail:  c.InstructorEmail,
		AvailableSet:     c.AvailableSet,
		Price:            c.Price,
		Status:           c.Status,
		EnrolledStudents: c.EnrolledStudents,
	}
	res, err := r.classes.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert class: %w", err)
	}
	c.ID = doc.ID.Hex()
	return fromInsert(res), nil
}

func (r *MongoRepo) ListClasses(ctx context.Context, f models.ClassFilter) ([]models.Class, error) {
	filter := bson.D{}
	if f.InstructorEmail != "" {
		filter = append(filter, bson.E{Key: "instructorEmail", Value: f.InstructorEmail})
	}
	opts := options.Find()
	if f.SortByEnrolled {
		opts.SetSort(bson.D{{Key: "enrolledStudents", Value: -1}})
	}

	cur, err := r.classes.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	var docs []classDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}

	classes := make([]models.Class, 0, len(docs))
	for _, d := range docs {
		classes = append(classes, classFromDoc(d))
	}
	return classes, nil
}

func (r *MongoRepo) UpdateClass(ctx context.Context, id bson.ObjectID, u models.ClassUpdate) (models.UpdateResult, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if u.Empty() {
		n, err := r.classes.CountDocuments(ctx, filter)
		if err != nil {
			return models.UpdateResult{}, fmt.Errorf("count class: %w", err)
		}
		return models.UpdateResult{Acknowledged: true, MatchedCount: n}, nil
	}

	set := bson.D{}
	for field, value := range u.Fields() {
		set = append(set, bson.E{Key: field, Value: value})
	}
	res, err := r.classes.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update class: %w", err)
	}
	return fromUpdate(res), nil
}

func (r *MongoRepo) SetClassStatus(ctx context.Context, id bson.ObjectID, status string) (models.UpdateResult, error) {
	return r.setField(ctx, r.classes, id, "status", status)
}

func (r *MongoRepo) InsertSelection(ctx context.Context, s *models.SelectedClass) (models.InsertResult, error) {
	doc := selectionDoc{
		ID:              bson.NewObjectID(),
		Email:           s.Email,
		ClassID:         s.ClassID,
		ClassName:       s.ClassName,
		ClassPhoto:      s.ClassPhoto,
		InstructorName:  s.InstructorName,
		InstructorEmail: s.InstructorEmail,
		AvailableSet:    s.AvailableSet,
		Price:           s.Price,
	}
	res, err := r.selections.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert selection: %w", err)
	}
	s.ID = doc.ID.Hex()
	return fromInsert(res), nil
}

func (r *MongoRepo) ListSelections(ctx context.Context, email string) ([]models.SelectedClass, error) {
	filter := bson.D{}
	if email != "" {
		filter = append(filter, bson.E{Key: "email", Value: email})
	}

	cur, err := r.selections.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	var docs []selectionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}

	items := make([]models.SelectedClass, 0, len(docs))
	for _, d := range docs {
		items = append(items, models.SelectedClass{
			ID:              d.ID.Hex(),
			Email:           d.Email,
			ClassID:         d.ClassID,
			ClassName:       d.ClassName,
			ClassPhoto:      d.ClassPhoto,
			InstructorName:  d.InstructorName,
			InstructorEmail: d.InstructorEmail,
			AvailableSet:    d.AvailableSet,
			Price:           d.Price,
		})
	}
	return items, nil
}

func (r *MongoRepo) DeleteSelection(ctx context.Context, id bson.ObjectID) (models.DeleteResult, error) {
	res, err := r.selections.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete selection: %w", err)
	}
	return fromDelete(res), nil
}

func (r *MongoRepo) InsertFeedback(ctx context.Context, f *models.Feedback) (models.InsertResult, error) {
	doc := feedbackDoc{ID: bson.NewObjectID(), ClassID: f.ClassID, Email: f.Email, Content: f.Content}
	res, err := r.feedback.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert feedback: %w", err)
	}
	f.ID = doc.ID.Hex()
	return fromInsert(res), nil
}

func (r *MongoRepo) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	cur, err := r.feedback.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	var docs []feedbackDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}

	items := make([]models.Feedback, 0, len(docs))
	for _, d := range docs {
		items = append(items, models.Feedback{ID: d.ID.Hex(), ClassID: d.ClassID, Email: d.Email, Content: d.Content})
	}
	return items, nil
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
