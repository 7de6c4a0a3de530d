// Package mongo provides MongoDB-backed persistence for users and exercises.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/exercisetracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

// Repository stores users and exercises in two collections.
type Repository struct {
	client    *mongo.Client
	users     *mongo.Collection
	exercises *mongo.Collection
}

// Connect dials uri and binds the repository to database.
func Connect(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return NewRepository(client, database), nil
}

// NewRepository wraps an existing client.
func NewRepository(client *mongo.Client, database string) *Repository {
	db := client.Database(database)
	return &Repository{
		client:    client,
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
	}
}

// EnsureIndexes creates the index backing log queries.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})
	return err
}

// Ping checks the primary is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	doc := userDocument{ID: primitive.NewObjectID(), Username: user.Username}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "username", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, nil
}

// FindUserByID implements domain.UserRepository. IDs that are not valid
// ObjectIDs are treated as unknown.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	doc := exerciseDocument{
		ID:          primitive.NewObjectID(),
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        domain.CalendarDay(exercise.Date),
	}
	if _, err := r.exercises.InsertOne(ctx, doc); err != nil {
		return domain.Exercise{}, err
	}
	return toExercise(doc), nil
}

// QueryExercises implements domain.ExerciseRepository.
func (r *Repository) QueryExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	query := bson.D{{Key: "user_id", Value: filter.UserID}}
	if filter.From != nil || filter.To != nil {
		dates := bson.D{}
		if filter.From != nil {
			dates = append(dates, bson.E{Key: "$gte", Value: *filter.From})
		}
		if filter.To != nil {
			dates = append(dates, bson.E{Key: "$lte", Value: *filter.To})
		}
		query = append(query, bson.E{Key: "date", Value: dates})
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.exercises.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	results := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		results = append(results, toExercise(doc))
	}
	return results, nil
}

func toExercise(doc exerciseDocument) domain.Exercise {
	return domain.Exercise{
		ID:          doc.ID.Hex(),
		UserID:      doc.UserID,
		Description: doc.Description,
		Duration:    doc.Duration,
		Date:        doc.Date.UTC(),
	}
}
